package tasks

import "github.com/hibiken/asynq"

// TypeRoomSweep deactivates rooms that outlived their TTL and closes their
// presence records. Scheduled periodically; the payload is empty.
const TypeRoomSweep = "room:sweep"

func NewRoomSweepTask() *asynq.Task {
	return asynq.NewTask(TypeRoomSweep, nil)
}
