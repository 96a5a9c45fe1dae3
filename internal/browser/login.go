// internal/browser/login.go
package browser

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// PerformLogin fills the detected credential fields, submits, waits for the
// page to settle and verifies the password field went away. The analysis must
// already have resolved email and password descriptors.
func PerformLogin(ctx context.Context, session schemas.PageSession, analysis *schemas.PageAnalysis, email, password string, logger *zap.Logger) error {
	if email == "" || password == "" {
		return fmt.Errorf("login required but no credentials provided")
	}

	emailField, ok := analysis.Fields[schemas.FieldEmail]
	if !ok {
		return fmt.Errorf("login form has no resolved email field")
	}
	passwordField, ok := analysis.Fields[schemas.FieldPassword]
	if !ok {
		return fmt.Errorf("login form has no resolved password field")
	}

	logger.Info("Resolving login form.",
		zap.String("email_selector", emailField.Selector),
		zap.String("password_selector", passwordField.Selector),
	)

	if err := session.TypeHuman(ctx, emailField.Selector, email); err != nil {
		return fmt.Errorf("failed to enter login email: %w", err)
	}
	if err := session.TypeHuman(ctx, passwordField.Selector, password); err != nil {
		return fmt.Errorf("failed to enter login password: %w", err)
	}

	submit := firstButton(analysis, schemas.IntentSubmit, schemas.IntentNext)
	if submit == nil {
		// No classified action: submit through the password field.
		if err := session.PressEnter(ctx, passwordField.Selector); err != nil {
			return fmt.Errorf("no submit control and enter-key submit failed: %w", err)
		}
	} else if err := session.Click(ctx, submit.Selector); err != nil {
		return fmt.Errorf("failed to click login submit: %w", err)
	}

	if err := session.WaitStable(ctx); err != nil {
		logger.Debug("Stabilization after login submit failed.", zap.Error(err))
	}

	// The password field disappearing is the success signal.
	state, err := session.ElementState(ctx, passwordField.Selector)
	if err == nil && state.Exists && state.Visible {
		return fmt.Errorf("login appears to have failed: password field still present")
	}

	logger.Info("Login resolved.")
	return nil
}

func firstButton(analysis *schemas.PageAnalysis, intents ...schemas.ButtonIntent) *schemas.ButtonDescriptor {
	for _, intent := range intents {
		if buttons := analysis.Buttons[intent]; len(buttons) > 0 {
			return &buttons[0]
		}
	}
	return nil
}
