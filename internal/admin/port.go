package admin

import "arsip-api/internal/auth"

type AdminServicePort interface {
	ListUsers() ([]auth.User, error)
	CreateUser(input UserInput, actorID int64) (*auth.User, error)
	UpdateUser(id int64, input UserInput, actorID int64) (*auth.User, error)
	DeleteUser(id int64, actorID int64) error
	Backup(actorID int64) (path string, filename string, err error)
}
