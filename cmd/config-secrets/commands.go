package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	secrets "github.com/rbaliyan/config-secrets"
	"github.com/rbaliyan/config-secrets/atomicfile"
	"github.com/rbaliyan/config-secrets/cmd/config-secrets/commands"
	"github.com/rbaliyan/config-secrets/internal/config"
)

// deps is what a command action needs, built from the environment configuration.
type deps struct {
	logger *slog.Logger
	io     commands.IOTuple
	tokens *secrets.TokenStore
	files  *atomicfile.Store
	path   string
}

type actionFunc func(ctx context.Context, cmd *cli.Command, d deps) error

// needs selects which parts of deps an action builds.
type needs struct {
	tokens bool
	files  bool
	// currentKeyFlag names a flag whose value replaces the configured master key.
	currentKeyFlag string
}

func fileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Credentials document path (defaults to CONFIG_SECRETS_FILE)",
	}
}

func action(n needs, run actionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.Load()
		d := deps{
			logger: cfg.NewLogger(os.Stderr),
			io:     commands.DefaultIO(),
			path:   cfg.File,
		}

		if n.tokens {
			current := ""
			if n.currentKeyFlag != "" {
				current = cmd.String(n.currentKeyFlag)
			}
			provider, err := commands.NewKeyProvider(cfg, current)
			if err != nil {
				return err
			}
			if d.tokens, err = commands.NewTokenStore(cfg, provider, d.logger); err != nil {
				return err
			}
		}

		if n.files {
			files, err := commands.NewFileStore(cfg, d.logger)
			if err != nil {
				return err
			}
			d.files = files
			if path := cmd.String("file"); path != "" {
				d.path = path
			}
		}

		return run(ctx, cmd, d)
	}
}

func getCommands() []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getCredentialCommands()...)
	cmds = append(cmds, getDocumentCommands()...)
	return cmds
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-key",
			Usage: "Generate a new master key",
			Action: action(needs{}, func(ctx context.Context, cmd *cli.Command, d deps) error {
				return commands.RunGenerateKey(ctx, d.logger, d.io.Writer)
			}),
		},
		{
			Name:  "key-id",
			Usage: "Print the identifier of a master key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "key",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "Master key (64 hex characters)",
				},
			},
			Action: action(needs{}, func(ctx context.Context, cmd *cli.Command, d deps) error {
				return commands.RunKeyID(ctx, d.logger, d.io.Writer, cmd.String("key"))
			}),
		},
	}
}

func getCredentialCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "encrypt",
			Usage: "Encrypt a value and print the stored credential",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "value",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Plaintext value to encrypt",
				},
			},
			Action: action(needs{tokens: true}, func(ctx context.Context, cmd *cli.Command, d deps) error {
				return commands.RunEncrypt(ctx, d.tokens, d.logger, d.io.Writer, cmd.String("value"))
			}),
		},
		{
			Name:  "decrypt",
			Usage: "Decrypt a stored credential and print its plaintext",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "credential",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Stored credential JSON (any accepted shape)",
				},
			},
			Action: action(needs{tokens: true}, func(ctx context.Context, cmd *cli.Command, d deps) error {
				return commands.RunDecrypt(ctx, d.tokens, d.logger, d.io.Writer, cmd.String("credential"))
			}),
		},
	}
}

func getDocumentCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "migrate",
			Usage: "Encrypt every plaintext credential in the document",
			Flags: []cli.Flag{fileFlag()},
			Action: action(needs{tokens: true, files: true}, func(ctx context.Context, cmd *cli.Command, d deps) error {
				return commands.RunMigrate(ctx, d.tokens, d.files, d.logger, d.io.Writer, d.path)
			}),
		},
		{
			Name:  "reveal",
			Usage: "Print every credential in the document that decrypts",
			Flags: []cli.Flag{fileFlag()},
			Action: action(needs{tokens: true, files: true}, func(ctx context.Context, cmd *cli.Command, d deps) error {
				return commands.RunReveal(ctx, d.tokens, d.files, d.logger, d.io.Writer, d.path)
			}),
		},
		{
			Name:  "recover",
			Usage: "Run the recovery cascade on the document and report its source",
			Flags: []cli.Flag{fileFlag()},
			Action: action(needs{files: true}, func(ctx context.Context, cmd *cli.Command, d deps) error {
				return commands.RunRecover(ctx, d.files, d.logger, d.io.Writer, d.path)
			}),
		},
		{
			Name:  "rotate",
			Usage: "Re-encrypt every credential under a new master key",
			Flags: []cli.Flag{
				fileFlag(),
				&cli.StringFlag{
					Name:     "new-key",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "New master key; the configured key is kept for decryption",
				},
			},
			Action: action(needs{tokens: true, files: true, currentKeyFlag: "new-key"}, func(ctx context.Context, cmd *cli.Command, d deps) error {
				return commands.RunRotate(ctx, d.tokens, d.files, d.logger, d.io.Writer, d.path)
			}),
		},
	}
}
