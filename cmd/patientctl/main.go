package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/jrsteele09/go-patient-portal/authbridge"
	"github.com/jrsteele09/go-patient-portal/authfetch"
	"github.com/jrsteele09/go-patient-portal/identity"
	"github.com/jrsteele09/go-patient-portal/patients"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options are shared by every command.
type Options struct {
	APIURL       string        `short:"a" long:"api-url" env:"API_URL" description:"patient records API base url" required:"true"`
	Domain       string        `long:"auth-domain" env:"AUTH_DOMAIN" description:"identity provider domain"`
	ClientID     string        `long:"client-id" env:"AUTH_CLIENT_ID" description:"machine client id"`
	ClientSecret string        `long:"client-secret" env:"AUTH_CLIENT_SECRET" description:"machine client secret"`
	Audience     string        `long:"audience" env:"AUTH_AUDIENCE" description:"API audience"`
	Token        string        `short:"t" long:"token" env:"PATIENTCTL_TOKEN" description:"use this access token instead of the client credentials grant"`
	Timeout      time.Duration `long:"timeout" default:"30s" description:"request timeout"`
	Verbose      bool          `short:"v" long:"verbose" description:"debug logging"`
}

var options Options

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	parser := flags.NewParser(&options, flags.Default)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if options.Verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}
	_, _ = parser.AddCommand("list", "List patients", "List the patients visible to the caller.", &listCommand{})
	_, _ = parser.AddCommand("get", "Show a patient", "Print one patient record as JSON.", &getCommand{})
	_, _ = parser.AddCommand("upload", "Upload a file", "Upload a file to a patient record.", &uploadCommand{})

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		if !errors.As(err, &flagsErr) {
			log.Error().Err(err).Msg("patientctl failed")
		}
		os.Exit(1)
	}
}

// connect initialises the process bridge and returns an API client over it.
func connect(ctx context.Context) *patients.Client {
	var session authbridge.Session
	if options.Token != "" {
		session = identity.NewStaticSession(options.Token)
	} else {
		session = identity.NewMachineSession(ctx, identity.Config{
			Domain:       options.Domain,
			ClientID:     options.ClientID,
			ClientSecret: options.ClientSecret,
			Audience:     options.Audience,
		})
	}
	authbridge.Initialize(session)

	fetch := authfetch.New(authbridge.Default, authfetch.WithLogger(log.Logger))
	return patients.NewClient(options.APIURL, fetch)
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), options.Timeout)
}
