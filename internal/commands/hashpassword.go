package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/webimpactuw/workshop-calendar/internal/app"
	"golang.org/x/term"
)

var (
	errEmptyUsername = errors.New("username cannot be empty")
	errEmptyPassword = errors.New("password cannot be empty")
	errMismatch      = errors.New("passwords do not match")
	errAborted       = errors.New("aborted")
)

// HashPassword handles the hash-password subcommand
func HashPassword(args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	configPath := fs.String("config", app.DefaultConfigFile, "Path to the TOML config file")
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	insecureUnmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: workshop-calendar hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates the auth file for POST /api/admin/refresh (Argon2id).\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  AUTH_FILE    Path to auth file (default: ./%s)\n", app.DefaultAuthFile)
	}
	fs.Parse(args)

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	stdin := bufio.NewReader(os.Stdin)
	readSecret := readPassword
	if *insecureUnmask {
		fmt.Fprintf(os.Stderr, "⚠️  WARNING: Password will be visible on screen!\n")
		readSecret = func(prompt string) string {
			fmt.Print(prompt)
			line, _ := readLine(stdin)
			return line
		}
	}

	username, password, err := promptCredentials(os.Stdout, stdin, readSecret)
	if err == nil {
		err = writeAuthFile(cfg.AuthFile, username, password, *overwrite, os.Stdout, stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Auth file created: %s (mode: 0400 read-only)\n", cfg.AuthFile)
	fmt.Printf("   Username: %s\n", username)
}

// promptCredentials asks for a username and a confirmed password
func promptCredentials(out io.Writer, in *bufio.Reader, readSecret func(prompt string) string) (string, string, error) {
	fmt.Fprint(out, "Enter username: ")
	username, err := readLine(in)
	if err != nil {
		return "", "", fmt.Errorf("read username: %w", err)
	}
	if username == "" {
		return "", "", errEmptyUsername
	}

	password := readSecret("Enter password:   ")
	if password == "" {
		return "", "", errEmptyPassword
	}
	if readSecret("Confirm password: ") != password {
		return "", "", errMismatch
	}
	return username, password, nil
}

// writeAuthFile creates the auth file, asking before replacing an existing
// one unless overwrite is set
func writeAuthFile(path, username, password string, overwrite bool, out io.Writer, in *bufio.Reader) error {
	err := app.CreateAuthFile(path, username, password, overwrite)
	if !errors.Is(err, app.ErrAuthFileExists) {
		return err
	}

	fmt.Fprintf(out, "Auth file already exists: %s\n", path)
	fmt.Fprint(out, "Overwrite? (y/N): ")
	response, _ := readLine(in)
	switch strings.ToLower(response) {
	case "y", "yes":
		return app.CreateAuthFile(path, username, password, true)
	default:
		return errAborted
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a password without echoing it, printing an asterisk per
// character when the terminal can be put into raw mode
func readPassword(prompt string) string {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		password, _ := term.ReadPassword(fd)
		fmt.Println()
		return string(password)
	}
	defer term.Restore(fd, oldState)

	var password []byte
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			break
		}
		switch c := buf[0]; c {
		case '\n', '\r':
			fmt.Print("\r\n")
			return string(password)
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Print("\b \b")
			}
		case 3: // Ctrl+C
			term.Restore(fd, oldState)
			fmt.Println()
			os.Exit(1)
		default:
			if c >= 32 && c <= 126 {
				password = append(password, c)
				fmt.Print("*")
			}
		}
	}

	fmt.Print("\r\n")
	return string(password)
}
