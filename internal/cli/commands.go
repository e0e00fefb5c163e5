package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/gobarber/gobarber-client/internal/models"
	"github.com/gobarber/gobarber-client/internal/session"
)

const dateLayout = "2006-01-02"

func init() {
	register(command{
		name:    "signin",
		summary: "sign in and remember the session",
		flags: func(fs *pflag.FlagSet) {
			fs.String("email", "", "account e-mail")
			fs.String("password", "", "account password")
		},
		run: runSignIn,
	})
	register(command{
		name:    "signup",
		summary: "create an account",
		flags: func(fs *pflag.FlagSet) {
			fs.String("name", "", "full name")
			fs.String("email", "", "account e-mail")
			fs.String("password", "", "password, at least 6 characters")
		},
		run: runSignUp,
	})
	register(command{
		name:    "signout",
		summary: "forget the stored session",
		run:     runSignOut,
	})
	register(command{
		name:    "whoami",
		summary: "show the signed-in user",
		run:     runWhoAmI,
	})
	register(command{
		name:          "providers",
		summary:       "list the providers you can book",
		run:           runProviders,
		authenticated: true,
	})
	register(command{
		name:    "availability",
		summary: "show a provider's free hours for a day",
		flags: func(fs *pflag.FlagSet) {
			fs.String("provider", "", "provider id")
			fs.String("date", "", "day to show, YYYY-MM-DD (default today)")
		},
		run:           runAvailability,
		authenticated: true,
	})
	register(command{
		name:    "book",
		summary: "book a provider at an hour",
		flags: func(fs *pflag.FlagSet) {
			fs.String("provider", "", "provider id")
			fs.String("date", "", "day of the appointment, YYYY-MM-DD (default today)")
			fs.Int("hour", -1, "hour of the appointment, 0-23")
		},
		run:           runBook,
		authenticated: true,
	})
	register(command{
		name:    "profile",
		summary: "update your name, e-mail or password",
		flags: func(fs *pflag.FlagSet) {
			fs.String("name", "", "new name (default current)")
			fs.String("email", "", "new e-mail (default current)")
			fs.String("old-password", "", "current password, needed to change it")
			fs.String("password", "", "new password")
			fs.String("password-confirmation", "", "new password again")
		},
		run:           runProfile,
		authenticated: true,
	})
}

func runSignIn(ctx context.Context, e *env) error {
	email, _ := e.flags.GetString("email")
	password, _ := e.flags.GetString("password")

	if err := e.app.Sessions.SignIn(ctx, email, password); err != nil {
		return err
	}

	user := e.app.Sessions.State().Session.User
	fmt.Fprintf(e.out, "Welcome, %s!\n", user.Name())
	return nil
}

func runSignUp(ctx context.Context, e *env) error {
	name, _ := e.flags.GetString("name")
	email, _ := e.flags.GetString("email")
	password, _ := e.flags.GetString("password")

	if _, err := e.app.Registration.SignUp(ctx, &models.SignUpRequest{Name: name, Email: email, Password: password}); err != nil {
		return err
	}

	fmt.Fprintln(e.out, "Account created. You can now sign in.")
	return nil
}

func runSignOut(ctx context.Context, e *env) error {
	if err := e.app.Sessions.SignOut(ctx); err != nil {
		// The session is gone for this process either way
		fmt.Fprintln(e.out, "Signed out, but the stored session could not be erased.")
		return err
	}
	fmt.Fprintln(e.out, "Signed out.")
	return nil
}

func runWhoAmI(_ context.Context, e *env) error {
	state := e.app.Sessions.State()
	if session.Gate(state) != session.RouteApp {
		fmt.Fprintln(e.out, "Not signed in.")
		return nil
	}
	user := state.Session.User
	fmt.Fprintf(e.out, "%s <%s>\n", user.Name(), user.Email())
	return nil
}

func runProviders(ctx context.Context, e *env) error {
	defer e.app.Providers.Leave()

	providers := e.app.Providers.ListProviders(ctx)
	if len(providers) == 0 {
		fmt.Fprintln(e.out, "No providers available.")
		return nil
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, p := range providers {
		fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
	}
	return w.Flush()
}

// selectionFlags reads --provider and --date
func selectionFlags(fs *pflag.FlagSet) (string, time.Time, error) {
	providerID, _ := fs.GetString("provider")
	if providerID == "" {
		return "", time.Time{}, usageErrorf("--provider is required")
	}

	raw, _ := fs.GetString("date")
	if raw == "" {
		now := time.Now()
		return providerID, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		return "", time.Time{}, usageErrorf("--date must look like 2006-01-02")
	}
	return providerID, date, nil
}

// loadDay selects (provider, date) and waits for its availability
func loadDay(ctx context.Context, e *env, providerID string, date time.Time) (models.DayAvailability, error) {
	sel := models.NewSelection(providerID, date)
	select {
	case <-e.app.Availability.Select(ctx, sel):
	case <-ctx.Done():
		return models.DayAvailability{}, ctx.Err()
	}

	day := e.app.Availability.Current()
	if day.Err != nil {
		return day, fmt.Errorf("could not load availability: %w", day.Err)
	}
	return day, nil
}

func runAvailability(ctx context.Context, e *env) error {
	providerID, date, err := selectionFlags(e.flags)
	if err != nil {
		return err
	}

	day, err := loadDay(ctx, e, providerID, date)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out, "Availability on %s\n", date.Format(dateLayout))
	printPartition(e, "Morning", day.Morning)
	printPartition(e, "Afternoon", day.Afternoon)
	return nil
}

func printPartition(e *env, title string, slots []models.HourSlot) {
	fmt.Fprintf(e.out, "%s:\n", title)
	if len(slots) == 0 {
		fmt.Fprintln(e.out, "  none")
		return
	}
	for _, s := range slots {
		mark := "booked"
		if s.Available {
			mark = "free"
		}
		fmt.Fprintf(e.out, "  %s  %s\n", s.Label, mark)
	}
}

func runBook(ctx context.Context, e *env) error {
	providerID, date, err := selectionFlags(e.flags)
	if err != nil {
		return err
	}
	hour, _ := e.flags.GetInt("hour")
	if hour < 0 || hour > 23 {
		return usageErrorf("--hour must be between 0 and 23")
	}

	day, err := loadDay(ctx, e, providerID, date)
	if err != nil {
		return err
	}
	if slot, ok := day.Find(hour); !ok || !slot.Available {
		return fmt.Errorf("%s is not available on %s", models.HourLabel(hour), date.Format(dateLayout))
	}

	confirmation, err := e.app.Booking.Book(ctx, providerID, date, hour)
	if err != nil {
		return err
	}

	fmt.Fprintln(e.out, confirmation.Message())
	return nil
}

func runProfile(ctx context.Context, e *env) error {
	current := e.app.Sessions.State().Session.User

	req := &models.UpdateProfileRequest{}
	req.Name, _ = e.flags.GetString("name")
	req.Email, _ = e.flags.GetString("email")
	req.OldPassword, _ = e.flags.GetString("old-password")
	req.Password, _ = e.flags.GetString("password")
	req.PasswordConfirmation, _ = e.flags.GetString("password-confirmation")
	if req.Name == "" {
		req.Name = current.Name()
	}
	if req.Email == "" {
		req.Email = current.Email()
	}

	user, err := e.app.Profile.UpdateProfile(ctx, req)
	if err != nil {
		var ce *session.CredentialError
		if errors.As(err, &ce) && ce.Kind == session.KindStorage && user != nil {
			fmt.Fprintln(e.out, "Profile updated, but it could not be saved on this device.")
		}
		return err
	}

	fmt.Fprintf(e.out, "Profile updated: %s <%s>\n", user.Name(), user.Email())
	return nil
}
