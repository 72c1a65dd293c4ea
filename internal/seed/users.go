package seed

import (
	"fmt"

	"codista-cms/internal/models"
	"codista-cms/internal/service"
	"codista-cms/pkg/logger"
)

func userStatus(created bool) string {
	if created {
		return "created"
	}
	return "exists"
}

// EnsureProjectUsers creates the inactive admin account and the project
// superusers. Superusers get the shared development password only when
// development is set; everywhere else they have to reset their password.
func EnsureProjectUsers(users *service.UserService, development bool) error {
	definitions, err := LoadUserDefinitions()
	if err != nil {
		return err
	}

	for _, account := range definitions.Inactive {
		created, err := users.EnsureInactiveUser(account.Email)
		if err != nil {
			return err
		}
		logger.Info("Inactive user ensured", map[string]interface{}{
			"email":  account.Email,
			"status": userStatus(created),
		})
	}

	for _, account := range definitions.Superusers {
		req := models.CreateUserRequest{
			Email:     account.Email,
			FirstName: account.FirstName,
			LastName:  account.LastName,
		}
		if development {
			req.Password = definitions.DevelopmentPassword
		}

		created, err := users.EnsureSuperuser(req, development)
		if err != nil {
			return err
		}
		logger.Info("Superuser ensured", map[string]interface{}{
			"email":  account.Email,
			"status": userStatus(created),
		})
	}

	if development {
		return nil
	}

	holders, err := developmentPasswordHolders(users, definitions)
	if err != nil {
		return err
	}
	for _, email := range holders {
		logger.Warn("Superuser still uses the development password", map[string]interface{}{
			"email": email,
		})
	}
	return nil
}

// developmentPasswordHolders lists the superusers whose password is the shared
// development password.
func developmentPasswordHolders(users *service.UserService, definitions *UserDefinitions) ([]string, error) {
	var holders []string
	for _, account := range definitions.Superusers {
		user, err := users.GetByEmail(account.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to load user %s: %w", account.Email, err)
		}
		if users.CheckPassword(user, definitions.DevelopmentPassword) {
			holders = append(holders, user.Email)
		}
	}
	return holders, nil
}
