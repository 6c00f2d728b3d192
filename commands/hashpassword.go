// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/danielhkuo/ward-admin/auth"
)

const defaultAuthFile = "auth.secret"

func newHashPasswordCommand() *cobra.Command {
	var (
		path      string
		userID    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Create the admin credential file",
		Long: `Prompts for the admin user id and password and writes an auth file
holding "user:argon2id-hash". Point AUTH_FILE at it and set SESSION_SECRET
to enable login; a fresh secret is printed for convenience.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = os.Getenv("AUTH_FILE")
			}
			if path == "" {
				path = defaultAuthFile
			}
			return hashPassword(os.Stdin, cmd.OutOrStdout(), path, userID, overwrite)
		},
	}

	cmd.Flags().StringVarP(&path, "auth-file", "f", "", "Auth file to write (default: $AUTH_FILE or ./auth.secret)")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Admin user id (prompted when empty)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing auth file")
	return cmd
}

// hashPassword prompts on out and reads answers from in. Passwords are
// read without echo when in is a terminal.
func hashPassword(in io.Reader, out io.Writer, path, userID string, overwrite bool) error {
	reader := bufio.NewReader(in)

	if userID == "" {
		fmt.Fprint(out, "Enter user id: ")
		line, err := readLine(reader)
		if err != nil {
			return fmt.Errorf("error reading user id: %w", err)
		}
		userID = line
	}
	if userID == "" {
		return errors.New("user id cannot be empty")
	}

	password, err := readPassword(in, reader, out, "Enter password:   ")
	if err != nil {
		return err
	}
	confirm, err := readPassword(in, reader, out, "Confirm password: ")
	if err != nil {
		return err
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	if err := auth.CreateAuthFile(path, userID, password, overwrite); err != nil {
		return err
	}

	secret, err := auth.GenerateSecret(32)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s\n\n", path)
	fmt.Fprintf(out, "Enable login with:\n  AUTH_FILE=%s\n  SESSION_SECRET=%s\n", path, secret)
	return nil
}

func readPassword(in io.Reader, reader *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("error reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := readLine(reader)
	if err != nil {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	return line, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
