package mcp

import (
	"context"

	"intentions/internal/users/models"
)

type UserService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, req *models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

type userRef struct {
	UserID int64 `json:"user_id" jsonschema:"description=ID of the user"`
}

type userUpdate struct {
	UserID int64 `json:"user_id" jsonschema:"description=ID of the user to update"`
	models.UpdateUserRequest
}

// UserTools exposes the users family.
func UserTools(svc UserService) []Tool {
	return []Tool{
		newTool("list_users", "List all users in creation order.",
			func(ctx context.Context, _ *noArgs) ([]*models.User, error) {
				return svc.ListUsers(ctx)
			}, asJSON[[]*models.User]),
		newTool("get_user", "Get a user by ID.",
			func(ctx context.Context, a *userRef) (*models.User, error) {
				return svc.GetUser(ctx, a.UserID)
			}, asJSON[*models.User]),
		newTool("create_user", "Create a user with a username and an email address.",
			func(ctx context.Context, a *models.CreateUserRequest) (*models.User, error) {
				return svc.CreateUser(ctx, a)
			}, asJSON[*models.User]),
		newTool("update_user", "Update the username or email of a user. Omitted fields are left unchanged.",
			func(ctx context.Context, a *userUpdate) (*models.User, error) {
				return svc.UpdateUser(ctx, a.UserID, &a.UpdateUserRequest)
			}, asJSON[*models.User]),
		newTool("delete_user", "Delete a user by ID.",
			func(ctx context.Context, a *userRef) (string, error) {
				ok, err := svc.DeleteUser(ctx, a.UserID)
				return confirm(ok, err, "User", a.UserID)
			}, asText),
	}
}
