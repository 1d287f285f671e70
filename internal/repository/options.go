package repository

// ListOptions contains common pagination options for list queries
type ListOptions struct {
	Limit  int
	Offset int
}
