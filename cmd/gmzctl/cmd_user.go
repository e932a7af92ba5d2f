package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/gmz-api/internal/application/auth"
	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/infrastructure/postgres"
)

var (
	userEmail    string
	userPassword string
	userName     string
	userRole     string
)

// createUserCmd crea el primer system_admin; la API solo permite altas a un admin autenticado.
var createUserCmd = &cobra.Command{
	Use:     "create-user",
	Short:   "Crea un usuario del back office",
	Example: `  gmzctl create-user --email admin@gmz.co --password 'cambiar-123' --role system_admin`,
	Args:    cobra.NoArgs,
	RunE:    runCreateUser,
}

func init() {
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "email del usuario")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "contraseña (mínimo 8 caracteres)")
	createUserCmd.Flags().StringVar(&userName, "name", "", "nombre visible")
	createUserCmd.Flags().StringVar(&userRole, "role", entity.RoleSystemAdmin, "system_admin | sales_admin")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	u, err := uc.CreateUser(ctx, dto.CreateUserRequest{
		Email:    userEmail,
		Password: userPassword,
		Name:     userName,
		Role:     userRole,
	})
	if err != nil {
		return err
	}
	log.Info().Str("user_id", u.ID).Str("role", u.Role).Msg("usuario creado")
	fmt.Fprintln(cmd.OutOrStdout(), u.ID)
	return nil
}
