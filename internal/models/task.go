package models

type Task struct {
	ID        uint64     `json:"id"`
	Content   string     `json:"content"`
	Completed bool       `json:"completed"`
	Owner     PublicUser `json:"owner"` // set once at creation
}

// TaskPatch carries the optional fields of an update; nil means "leave as is".
type TaskPatch struct {
	Content   *string
	Completed *bool
}
