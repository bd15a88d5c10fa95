package githubauth

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// Environment variable names used by GitHub authentication helpers.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const (
	dotEnvFileNameConstant             = ".env"
	passwordPromptTemplateConstant     = "GitHub password for %s: "
	promptNewlineConstant              = "\n"
	terminalUnavailableMessageConstant = "no token configured and standard input is not a terminal"
	passwordEmptyMessageConstant       = "empty password provided"
	passwordReadErrorTemplateConstant  = "unable to read password: %w"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// ErrTerminalUnavailable indicates no token was configured and no terminal exists for prompting.
var ErrTerminalUnavailable = errors.New(terminalUnavailableMessageConstant)

// ErrEmptyPassword indicates the interactive prompt returned an empty secret.
var ErrEmptyPassword = errors.New(passwordEmptyMessageConstant)

// ResolveToken returns the first non-empty GitHub authentication token observed
// in the provided environment map or the process environment.
func ResolveToken(environment map[string]string) (string, bool) {
	for _, key := range tokenPreference {
		if value, ok := lookup(environment, key); ok {
			return value, true
		}
	}
	for _, key := range tokenPreference {
		if value, ok := os.LookupEnv(key); ok {
			value = strings.TrimSpace(value)
			if len(value) > 0 {
				return value, true
			}
		}
	}
	return "", false
}

// PasswordPrompter reads a secret without echoing it.
type PasswordPrompter interface {
	ReadPassword(prompt string) (string, error)
}

// TerminalPasswordPrompter prompts on the controlling terminal via x/term.
type TerminalPasswordPrompter struct {
	promptWriter io.Writer
}

// NewTerminalPasswordPrompter constructs a prompter writing prompts to the provided writer.
func NewTerminalPasswordPrompter(promptWriter io.Writer) *TerminalPasswordPrompter {
	return &TerminalPasswordPrompter{promptWriter: promptWriter}
}

// ReadPassword writes the prompt and reads a line from standard input without echo.
func (prompter *TerminalPasswordPrompter) ReadPassword(prompt string) (string, error) {
	standardInputDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(standardInputDescriptor) {
		return "", ErrTerminalUnavailable
	}

	if prompter.promptWriter != nil {
		if _, writeError := io.WriteString(prompter.promptWriter, prompt); writeError != nil {
			return "", writeError
		}
	}

	passwordBytes, readError := term.ReadPassword(standardInputDescriptor)
	if prompter.promptWriter != nil {
		_, _ = io.WriteString(prompter.promptWriter, promptNewlineConstant)
	}
	if readError != nil {
		return "", fmt.Errorf(passwordReadErrorTemplateConstant, readError)
	}

	return string(passwordBytes), nil
}

// CredentialsResolver resolves the basic-auth secret for a username.
type CredentialsResolver struct {
	prompter PasswordPrompter
}

// NewCredentialsResolver constructs a resolver using the provided prompter.
// A nil prompter defaults to the terminal prompter writing to standard error.
func NewCredentialsResolver(prompter PasswordPrompter) *CredentialsResolver {
	if prompter == nil {
		prompter = NewTerminalPasswordPrompter(os.Stderr)
	}
	return &CredentialsResolver{prompter: prompter}
}

// ResolveSecret returns the secret to pair with the username: a configured
// token when one exists, otherwise an interactively prompted password. A .env
// file in the working directory is loaded before consulting the environment.
func (resolver *CredentialsResolver) ResolveSecret(username string) (string, error) {
	environmentFromFile, _ := godotenv.Read(dotEnvFileNameConstant)

	if token, tokenFound := ResolveToken(environmentFromFile); tokenFound {
		return token, nil
	}

	password, promptError := resolver.prompter.ReadPassword(fmt.Sprintf(passwordPromptTemplateConstant, username))
	if promptError != nil {
		return "", promptError
	}

	if len(strings.TrimSpace(password)) == 0 {
		return "", ErrEmptyPassword
	}

	return password, nil
}

func lookup(environment map[string]string, key string) (string, bool) {
	if environment == nil {
		return "", false
	}
	value, exists := environment[key]
	if !exists {
		return "", false
	}
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return "", false
	}
	return value, true
}
