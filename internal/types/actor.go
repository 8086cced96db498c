package types

import "github.com/google/uuid"

// SystemActorID is the reserved identity for automated actions (voting-window
// sweeps, coordinator-triggered recomputes). It is passed explicitly wherever
// an actor is required, never read from ambient state.
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
