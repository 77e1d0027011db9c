package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/taller-api/pkg/config"
	"github.com/jhoicas/taller-api/pkg/jwt"
	"github.com/urfave/cli/v3"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Emite un JWT firmado con JWT_SECRET",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Required: true, Usage: "identificador del usuario"},
			&cli.StringFlag{Name: "role", Value: jwt.RoleMaker, Usage: "admin | maker"},
			&cli.DurationFlag{Name: "ttl", Usage: "vigencia (por defecto JWT_EXPIRATION_MINUTES)"},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			role := c.String("role")
			if role != jwt.RoleAdmin && role != jwt.RoleMaker {
				return fmt.Errorf("rol desconocido %q", role)
			}
			minutes := cfg.JWT.Expiration
			if ttl := c.Duration("ttl"); ttl > 0 {
				minutes = int(ttl / time.Minute)
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, c.String("subject"), role, cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
}
