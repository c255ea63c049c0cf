package instagramimpl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-feed-archiver/internal/instagram"
)

// Login connects to Instagram, first trying to load a persisted session and
// falling back to a credential login. A two-factor challenge is completed
// with the configured verification code when one is present; otherwise it
// surfaces as instagram.ErrTwoFactorRequired.
func (ig *IgImpl) Login(ctx context.Context) error {
	if err := ig.reloadSession(); err == nil {
		if ig.validateSession(ctx) {
			ig.Logger.Info("Successfully logged in using existing session", "user", ig.Username())
			return nil
		}
		ig.Logger.Warn("Session loaded but appears to be invalid, attempting fresh login")
	}

	ig.Logger.Info("Attempting to log in with credentials", "user", ig.Config.Instagram.Username)

	ig.Client = goinsta.New(ig.Config.Instagram.Username, ig.Config.Instagram.Password)

	var loginErr error
	for attempt := 1; attempt <= 3; attempt++ {
		loginErr = ig.Client.Login()
		if loginErr == nil {
			break
		}

		if errors.Is(loginErr, goinsta.Err2FARequired) {
			loginErr = ig.completeTwoFactor()
			break
		}

		loginErr = classifyLoginErr(loginErr)
		if errors.Is(loginErr, instagram.ErrBadCredentials) {
			// Retrying a rejected password only risks an account lockout.
			break
		}

		ig.Logger.Error("Login attempt failed",
			"attempt", attempt,
			"error", loginErr)

		if attempt < 3 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	if loginErr != nil {
		if errors.Is(loginErr, instagram.ErrTwoFactorRequired) || errors.Is(loginErr, instagram.ErrBadCredentials) {
			return loginErr
		}
		return fmt.Errorf("failed to log in after multiple attempts: %w", loginErr)
	}

	ig.username = ig.Config.Instagram.Username
	ig.Logger.Info("Successfully logged in with credentials")

	if err := ig.saveSession(); err != nil {
		ig.Logger.Warn("Failed to save Instagram session", "error", err)
	}
	if err := ig.rememberIdentity(); err != nil {
		ig.Logger.Warn("Failed to remember identity", "error", err)
	}

	return nil
}

// classifyLoginErr maps provider login failures onto the package's auth
// taxonomy so callers can distinguish a rejected password from a transient
// failure.
func classifyLoginErr(err error) error {
	if errors.Is(err, goinsta.ErrBadPassword) {
		return instagram.ErrBadCredentials
	}
	return err
}

// completeTwoFactor finishes a 2FA challenge with the one-shot configured
// code. Without a code the challenge is surfaced, not swallowed: no later
// stage can proceed without a valid session.
func (ig *IgImpl) completeTwoFactor() error {
	code := strings.TrimSpace(ig.Config.Instagram.TwoFactorCode)
	if code == "" {
		return instagram.ErrTwoFactorRequired
	}

	ig.Logger.Info("Two-factor challenge received, submitting verification code")
	if err := ig.Client.TwoFactorInfo.Login2FA(code); err != nil {
		return fmt.Errorf("two-factor verification failed: %w", err)
	}
	return nil
}

// reloadSession attempts to load an existing Instagram session.
func (ig *IgImpl) reloadSession() error {
	path := ig.Config.Instagram.SessionPath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("session file not found: %w", err)
	}

	insta, err := goinsta.Import(path)
	if err != nil {
		return fmt.Errorf("failed to import session: %w", err)
	}

	ig.Client = insta
	if saved, err := os.ReadFile(ig.Config.Instagram.IdentityPath); err == nil {
		ig.username = strings.TrimSpace(string(saved))
		ig.Logger.Info("Found saved session", "user", ig.username)
	}
	return nil
}

// validateSession checks the session with a cheap account sync, bounded so a
// wedged client cannot stall startup.
func (ig *IgImpl) validateSession(ctx context.Context) bool {
	if ig.Client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ig.Logger.Error("Panic in Instagram session validation", "panic", r)
				done <- false
			}
		}()
		done <- ig.Client.Account.Sync() == nil
	}()

	select {
	case valid := <-done:
		return valid
	case <-ctx.Done():
		ig.Logger.Warn("Session validation timed out")
		return false
	}
}

// saveSession exports the current Instagram session to a file.
func (ig *IgImpl) saveSession() error {
	if ig.Client == nil {
		return fmt.Errorf("no active Instagram session to save")
	}

	if err := ig.Client.Export(ig.Config.Instagram.SessionPath); err != nil {
		return fmt.Errorf("failed to export session: %w", err)
	}

	ig.Logger.Info("Instagram session saved",
		"path", ig.Config.Instagram.SessionPath)
	return nil
}

// rememberIdentity persists the username (never the password) so the next run
// can tell which identity the saved session belongs to.
func (ig *IgImpl) rememberIdentity() error {
	return os.WriteFile(ig.Config.Instagram.IdentityPath, []byte(ig.Config.Instagram.Username), 0600)
}
