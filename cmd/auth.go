package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mateai/mate/internal/gateway"
	"github.com/mateai/mate/internal/logger"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the Mate AI backend",
	Long: `Log in and store the session token in the config directory.

The password is read from MATE_PASSWORD or prompted on stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		gw, err := newGateway(cfg, logger.NewNop())
		if err != nil {
			return err
		}

		in := bufio.NewReader(os.Stdin)
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			if email, err = prompt(in, "Correo: "); err != nil {
				return err
			}
		}
		password := os.Getenv("MATE_PASSWORD")
		if password == "" {
			if password, err = prompt(in, "Contraseña: "); err != nil {
				return err
			}
		}

		u, err := gw.Login(cmd.Context(), gateway.Credentials{Email: email, Password: password})
		if err != nil {
			if gateway.IsUnauthorized(err) {
				return fmt.Errorf("correo o contraseña incorrectos")
			}
			return err
		}
		fmt.Printf("Sesión iniciada como %s (%s)\n", u.FullName(), u.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		gw, err := newGateway(cfg, logger.NewNop())
		if err != nil {
			return err
		}
		if err := gw.Logout(); err != nil {
			return err
		}
		fmt.Println("Sesión cerrada.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		gw, err := newGateway(cfg, logger.NewNop())
		if err != nil {
			return err
		}
		if _, err := requireLogin(gw); err != nil {
			return err
		}

		refresh, _ := cmd.Flags().GetBool("refresh")
		u := gw.Session().User()
		if refresh {
			if u, err = gw.Profile(cmd.Context()); err != nil {
				return err
			}
		}

		fmt.Printf("Nombre:       %s\n", u.FullName())
		fmt.Printf("Correo:       %s\n", u.Email)
		fmt.Printf("Rol:          %s\n", u.Role)
		if u.Grade != "" {
			fmt.Printf("Grado:        %s\n", u.Grade)
		}
		if u.School != "" {
			fmt.Printf("Institución:  %s\n", u.School)
		}
		return nil
	},
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "Account email")
	whoamiCmd.Flags().Bool("refresh", false, "Fetch the profile from the backend")
}
