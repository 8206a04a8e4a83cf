// healthbridge is the terminal client for the HealthBridge Seva Kendra
// backend: login/signup with OTP verification, the five-step health
// assessment wizard, the AI chat and the account dashboard.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/api"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/assessment"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/chat"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/config"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/session"
	"github.com/tomarAyush07/healthbridge-seva-kendra/internal/store"
)

type app struct {
	cfg      config.Config
	store    *store.Store
	client   *api.Client
	sessions *session.Manager
	in       *bufio.Scanner
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if dir := filepath.Dir(cfg.StorePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal(err)
		}
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		fatal(err)
	}

	client := api.NewClient(cfg.APIBaseURL)
	a := &app{
		cfg:      cfg,
		store:    st,
		client:   client,
		sessions: session.NewManager(client, st),
		in:       bufio.NewScanner(os.Stdin),
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		err = a.login(ctx, os.Args[2:])
	case "signup":
		err = a.signup(ctx)
	case "logout":
		a.sessions.Logout()
		fmt.Println("Logged out.")
	case "whoami":
		err = a.whoami()
	case "assessment":
		err = a.assessment(ctx)
	case "chat":
		err = a.chat(ctx)
	case "dashboard":
		err = a.dashboard(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, api.ErrAuthExpired) {
			fmt.Println("Your session has expired. Please login again.")
			os.Exit(1)
		}
		fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: healthbridge <command>

commands:
  login       sign in with username and password
  signup      create an account and verify your email (OTP)
  logout      clear the stored session
  whoami      show the signed-in user
  assessment  fill in or review the health assessment
  chat        talk to the HealthBridge AI assistant
  dashboard   show recent conversations and preferences`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func (a *app) prompt(label string) string {
	fmt.Printf("%s: ", label)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) confirm(question string) bool {
	answer := a.prompt(question + " [y/N]")
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		*username = a.prompt("Username")
	}
	if *password == "" {
		*password = a.prompt("Password")
	}

	if err := a.sessions.Login(ctx, *username, *password); err != nil {
		return err
	}
	fmt.Println("Login Successful. You have been logged in successfully!")
	return nil
}

func (a *app) signup(ctx context.Context) error {
	username := a.prompt("Username")
	email := a.prompt("Email")
	password := a.prompt("Password")
	confirm := a.prompt("Confirm password")

	msg, err := a.sessions.Signup(ctx, username, email, password, confirm)
	if err != nil {
		if errors.Is(err, session.ErrPasswordMismatch) {
			fmt.Println("Passwords do not match. Please make sure both passwords are the same.")
			return nil
		}
		return err
	}
	fmt.Println(msg)

	// OTP loop: verify, or resend once the cooldown allows it.
	for {
		code := a.prompt("Enter OTP (or 'resend', 'quit')")
		switch code {
		case "quit", "":
			return nil
		case "resend":
			msg, err := a.sessions.ResendOTP(ctx)
			if err != nil {
				if errors.Is(err, session.ErrResendCooldown) {
					fmt.Printf("Please wait %s before requesting a new code.\n",
						session.FormatTime(a.sessions.Countdown()))
					continue
				}
				return err
			}
			fmt.Println(msg)
		default:
			msg, err := a.sessions.VerifyOTP(ctx, code)
			if err != nil {
				fmt.Println("Verification failed:", err)
				continue
			}
			fmt.Println(msg)
			fmt.Println("You can now login with `healthbridge login`.")
			return nil
		}
	}
}

func (a *app) whoami() error {
	u, ok := a.sessions.CurrentUser()
	if !ok {
		fmt.Println("Not logged in.")
		return nil
	}
	if u.Email != "" {
		fmt.Printf("%s <%s>\n", u.Name, u.Email)
	} else {
		fmt.Println(u.Name)
	}
	return nil
}

func (a *app) assessment(ctx context.Context) error {
	if !a.sessions.Authenticated() {
		fmt.Println("Please login first.")
		return nil
	}

	ctrl := assessment.NewController(a.client)
	if err := ctrl.Start(ctx); err != nil {
		if api.IsNetwork(err) {
			fmt.Println("Unable to connect to the backend server. Please try again later.")
			return nil
		}
		return err
	}

	if ctrl.ReadOnly() {
		fmt.Println("You have already submitted your health assessment.")
		printRecord(ctrl.Record())
		return nil
	}

	for {
		rec := ctrl.Record()
		fmt.Printf("\n-- Step %d of %d: %s --\n", int(ctrl.Step())+1, assessment.TotalSteps, ctrl.Step())

		switch ctrl.Step() {
		case assessment.StepPersonal:
			a.fill(&rec.Name, "Full name")
			a.fill(&rec.Email, "Email")
			a.fillInt(&rec.Age, "Age")
			a.fill(&rec.Gender, "Gender")
			a.fill(&rec.State, "State")
			a.fill(&rec.ContactDetails, "Contact details")
		case assessment.StepMedical:
			a.fill(&rec.ChronicConditions, "Chronic conditions")
			a.fill(&rec.PastSurgeries, "Past surgeries")
			a.fill(&rec.Allergies, "Allergies")
			a.fill(&rec.Medications, "Current medications")
			a.fill(&rec.Symptoms, "Current symptoms")
			a.fill(&rec.SymptomSeverity, "Symptom severity")
			a.fill(&rec.SymptomDuration, "Symptom duration")
			a.fill(&rec.VaccinationHistory, "Vaccination history")
		case assessment.StepMental:
			rec.MentalHealthStress = a.confirm("Experiencing stress?")
			rec.MentalHealthAnxiety = a.confirm("Experiencing anxiety?")
			rec.MentalHealthDepression = a.confirm("Experiencing depression?")
			a.fill(&rec.AccessibilityNeeds, "Accessibility needs")
			a.fill(&rec.PregnancyStatus, "Pregnancy status")
		case assessment.StepInsurance:
			a.fill(&rec.HealthInsuranceProvider, "Insurance provider")
			a.fill(&rec.HealthInsurancePolicy, "Policy number")
			a.fill(&rec.PreferredLanguage, "Preferred language")
			rec.ResearchParticipation = a.confirm("Willing to participate in health research?")
			a.fill(&rec.EmergencyContact.Name, "Emergency contact name")
			a.fill(&rec.EmergencyContact.Relationship, "Emergency contact relationship")
			a.fill(&rec.EmergencyContact.Number, "Emergency contact number")
		case assessment.StepReview:
			printRecord(rec)
		}

		var action string
		if ctrl.Step() == assessment.StepReview {
			action = a.prompt("[submit/previous/cancel]")
		} else {
			action = a.prompt("[next/previous/cancel]")
		}

		switch action {
		case "next":
			if err := ctrl.Next(); err != nil {
				fmt.Println(err)
			}
		case "previous":
			if err := ctrl.Previous(); err != nil {
				fmt.Println(err)
			}
		case "cancel":
			if ctrl.Cancel(func() bool {
				return a.confirm("Leave the form? Any information you've entered will not be saved.")
			}) {
				fmt.Println("Form discarded.")
				return nil
			}
		case "submit":
			err := ctrl.Submit(ctx)
			switch {
			case err == nil:
				fmt.Println("Health Assessment Submitted Successfully! Thank you for completing your health assessment.")
				return nil
			case errors.Is(err, assessment.ErrValidation):
				fmt.Println("Please fill in all required fields correctly:")
				for field, msg := range ctrl.FieldErrors() {
					fmt.Printf("  %s: %s\n", field, msg)
				}
				// jump back so the fields can be corrected
				_ = ctrl.Goto(assessment.StepPersonal)
			case api.IsNetwork(err):
				fmt.Println("Network error: Unable to connect to the server.")
			default:
				var apiErr *api.Error
				if errors.As(err, &apiErr) && apiErr.Status == 400 && len(ctrl.FieldErrors()) > 0 {
					fmt.Println("Please correct the errors in the form:")
					for field, msg := range ctrl.FieldErrors() {
						fmt.Printf("  %s: %s\n", field, msg)
					}
				} else {
					return err
				}
			}
		default:
			fmt.Println("Unknown action.")
		}
	}
}

func (a *app) fill(target *string, label string) {
	current := *target
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	if v := a.prompt(label); v != "" {
		*target = v
	}
}

func (a *app) fillInt(target *int, label string) {
	current := *target
	if current != 0 {
		label = fmt.Sprintf("%s [%d]", label, current)
	}
	v := a.prompt(label)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// invalid number behaves like an empty required field
		*target = 0
		return
	}
	*target = n
}

func printRecord(r *assessment.Record) {
	fmt.Println("\nHealth Assessment Review")
	fmt.Printf("  Name: %s\n  Email: %s\n  Age: %d\n  Gender: %s\n  State: %s\n  Contact: %s\n",
		r.Name, r.Email, r.Age, r.Gender, r.State, r.ContactDetails)
	fmt.Printf("  Conditions: %s\n  Surgeries: %s\n  Allergies: %s\n  Medications: %s\n",
		r.ChronicConditions, r.PastSurgeries, r.Allergies, r.Medications)
	fmt.Printf("  Symptoms: %s (severity: %s, duration: %s)\n",
		r.Symptoms, r.SymptomSeverity, r.SymptomDuration)
	fmt.Printf("  Stress: %t  Anxiety: %t  Depression: %t\n",
		r.MentalHealthStress, r.MentalHealthAnxiety, r.MentalHealthDepression)
	fmt.Printf("  Insurance: %s (%s)\n", r.HealthInsuranceProvider, r.HealthInsurancePolicy)
	fmt.Printf("  Emergency contact: %s (%s) %s\n",
		r.EmergencyContact.Name, r.EmergencyContact.Relationship, r.EmergencyContact.Number)
}

func (a *app) chat(ctx context.Context) error {
	var name string
	if u, ok := a.sessions.CurrentUser(); ok {
		name = u.Name
	}

	c := chat.New(chat.ScriptedResponder{Delay: 2 * time.Second}, a.store, name)
	for _, m := range c.Messages() {
		fmt.Printf("%s: %s\n", m.Role, m.Content)
	}

	for {
		input := a.prompt("you")
		if input == "" || input == "exit" {
			return nil
		}
		reply, err := c.Send(ctx, input)
		if err != nil {
			return err
		}
		fmt.Printf("assistant: %s\n", reply.Content)
	}
}

func (a *app) dashboard(args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	dark := fs.String("dark", "", "set dark mode: true or false")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dark != "" {
		on, err := strconv.ParseBool(*dark)
		if err != nil {
			return err
		}
		if err := a.store.SetDarkMode(on); err != nil {
			return err
		}
	}

	if u, ok := a.sessions.CurrentUser(); ok {
		fmt.Printf("Welcome back, %s!\n", u.Name)
	} else {
		fmt.Println("Not logged in.")
	}
	fmt.Printf("Dark mode: %t\n", a.store.DarkMode())

	var convs []chat.Conversation
	a.store.GetJSON(store.KeyConversations, &convs)
	if len(convs) == 0 {
		fmt.Println("No recent AI conversations.")
		return nil
	}
	fmt.Println("Recent AI conversations:")
	for _, c := range convs {
		fmt.Printf("  %s  %s — %s\n", c.Date.Format("2006-01-02 15:04"), c.Title, c.Preview)
	}
	return nil
}
