package cmd

import (
	"complaint_tracker_backend/internal/model"
	"complaint_tracker_backend/internal/repository"
	"complaint_tracker_backend/internal/service"
	"complaint_tracker_backend/pkg/database"
	"complaint_tracker_backend/pkg/logger"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var newUser service.RegisterInput

// create-user is the only way to get an ADMIN account; open registration refuses it.
var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account of any role, including ADMIN",
	RunE:  runCreateUser,
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&newUser.Name, "name", "", "display name")
	f.StringVar(&newUser.Email, "email", "", "login email")
	f.StringVar(&newUser.Password, "password", "", "initial password")
	f.StringVar(&newUser.Role, "role", "ADMIN", "STUDENT, WARDEN, FACULTY or ADMIN")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createUserCmd)
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, _ := logger.New(cfg)
	defer log.Sync()

	db, err := database.InitDB(&cfg.Database, false, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	user, err := createUser(cmd.Context(), service.NewAuthService(repository.NewUserRepository(db), nil, cfg), newUser, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	log.Info("User created", zap.Uint("id", user.ID), zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return nil
}

func createUser(ctx context.Context, auth *service.AuthService, in service.RegisterInput, out io.Writer) (*model.User, error) {
	user, err := auth.CreateUser(ctx, in, true)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(out, "created %s user %s (id %d)\n", user.Role, user.Email, user.ID)
	return user, nil
}
