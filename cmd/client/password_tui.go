package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/watchdeck/watchdeck/internal/dashsdk"
)

// Strings
const (
	txtPasswordTitle       = "Authentication required"
	txtPasswordPlaceholder = "••••••••"
	txtPasswordPrompt      = "Enter the password for protected content"
	txtPasswordEmpty       = "Password must not be empty"
	txtPasswordHelp        = "Press 'Enter' to submit. 'Esc' or 'Ctrl+C' to cancel."
)

// Styles
var (
	promptTitleStyle = cyan.Bold(true)
	promptFocusStyle = green
	promptHelpStyle  = gray
	promptErrorStyle = red
)

// passwordPrompt is a CredentialSource that asks at the terminal. Wrapped in
// CachedCredentials by the caller, so the user types the password once per
// run no matter how many protected files follow.
type passwordPrompt struct {
	username string
}

func (p *passwordPrompt) Resolve(_ context.Context, targetURL string) (*dashsdk.Credentials, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return nil, fmt.Errorf("password required for %s (use --password or WATCHDECK_AUTH_PASSWORD)", targetURL)
	}

	password, err := runPasswordTUI(&passwordTUIOpts{
		Username:  p.username,
		TargetURL: targetURL,
	})
	if err != nil {
		return nil, err
	}
	return &dashsdk.Credentials{Username: p.username, Password: password}, nil
}

type passwordTUIOpts struct {
	Username  string
	TargetURL string
}

type passwordModel struct {
	opts *passwordTUIOpts

	input        textinput.Model
	errorMessage string
	cancelled    bool
	submitted    bool
}

func newPasswordModel(opts *passwordTUIOpts) passwordModel {
	input := textinput.New()
	input.Placeholder = txtPasswordPlaceholder
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 128
	input.Width = 32
	input.PromptStyle = promptFocusStyle
	input.TextStyle = promptFocusStyle
	input.PlaceholderStyle = promptHelpStyle
	input.Focus()

	return passwordModel{
		opts:  opts,
		input: input,
	}
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEnter:
			if strings.TrimSpace(m.input.Value()) == "" {
				m.errorMessage = txtPasswordEmpty
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
		// typing clears a stale error
		m.errorMessage = ""
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m passwordModel) View() string {
	var b strings.Builder
	b.WriteString(promptTitleStyle.Render(txtPasswordTitle))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s%s\n", gray.Render("Target  "), green.Render(m.opts.TargetURL)))
	b.WriteString(fmt.Sprintf("%s%s\n", gray.Render("User    "), green.Render(m.opts.Username)))
	b.WriteString("\n")
	b.WriteString(txtPasswordPrompt)
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	if m.errorMessage != "" {
		b.WriteString("\n\n")
		b.WriteString(promptErrorStyle.Render(m.errorMessage))
	}
	b.WriteString("\n\n")
	b.WriteString(promptHelpStyle.Render(txtPasswordHelp))
	b.WriteString("\n")
	return b.String()
}

// runPasswordTUI blocks until the user submits or cancels. It runs inline
// rather than in the alt screen so daemon log lines stay visible around it.
func runPasswordTUI(opts *passwordTUIOpts) (string, error) {
	model, err := tea.NewProgram(newPasswordModel(opts)).Run()
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}

	fm, ok := model.(passwordModel)
	if !ok || fm.cancelled || !fm.submitted {
		return "", fmt.Errorf("password prompt cancelled")
	}
	return fm.input.Value(), nil
}
