package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"svcdir/internal/config"
	"svcdir/internal/db"
	"svcdir/internal/domain"
	"svcdir/internal/logging"
	"svcdir/internal/notify"
	"svcdir/internal/repository"
	"svcdir/internal/service"
)

const usage = `usage: admin <command> [flags]

commands:
  create           create an identity (passcode generated and sent by SMS)
  createsuperuser  create an administrative identity
  list             list identities with their passcodes
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	repo := repository.NewPgIdentityRepository(pool)

	var sms notify.Sender
	if cfg.SMSEnabled() {
		sender, err := notify.NewSMSSender(cfg.SMSAPIURL, cfg.SMSAPIToken, cfg.SMSSenderID, cfg.SMSRouting, logger)
		if err != nil {
			logger.Warn("sms sender init failed", zap.Error(err))
		} else {
			sms = sender
		}
	}
	credentials := service.NewCredentialService(logger, repo, sms, nil, cfg.PhoneRegion)

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "create":
		err = runCreate(ctx, os.Stdout, credentials, args, false)
	case "createsuperuser":
		err = runCreate(ctx, os.Stdout, credentials, args, true)
	case "list":
		err = runList(ctx, os.Stdout, repo)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

type identityCreator interface {
	CreateIdentity(ctx context.Context, input service.CreateIdentityInput) (service.CreatedIdentity, error)
}

// parseCreateFlags traduce los flags de create/createsuperuser a la entrada del servicio.
func parseCreateFlags(args []string, superuser bool) (service.CreateIdentityInput, error) {
	name := "create"
	if superuser {
		name = "createsuperuser"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var input service.CreateIdentityInput
	fs.StringVar(&input.ServiceNumber, "service-number", "", "service number (required)")
	fs.StringVar(&input.Username, "username", "", "username (required)")
	fs.StringVar(&input.Email, "email", "", "email (required)")
	fs.StringVar(&input.Name, "name", "", "display name")
	fs.StringVar(&input.Phone, "phone", "", "phone number for passcode delivery")
	fs.StringVar(&input.Passcode, "passcode", "", "explicit 6-digit passcode (generated when empty)")
	if !superuser {
		fs.BoolVar(&input.IsStaff, "staff", false, "grant staff access")
		fs.BoolVar(&input.IsAdmin, "admin", false, "grant admin access")
	}
	if err := fs.Parse(args); err != nil {
		return service.CreateIdentityInput{}, err
	}
	input.IsSuperuser = superuser
	return input, nil
}

func runCreate(ctx context.Context, out io.Writer, creator identityCreator, args []string, superuser bool) error {
	input, err := parseCreateFlags(args, superuser)
	if err != nil {
		return err
	}
	created, err := creator.CreateIdentity(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s (%s)\npasscode: %s\nnotified: %t\n",
		created.Identity.ServiceNumber, created.Identity.Username, created.Passcode, created.Notified)
	return nil
}

type passcodeLister interface {
	ListWithPasscodes(ctx context.Context) ([]domain.AdminIdentityView, error)
}

func runList(ctx context.Context, out io.Writer, vault passcodeLister) error {
	views, err := vault.ListWithPasscodes(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE NUMBER\tUSERNAME\tNAME\tPHONE\tPASSCODE\tACTIVE")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n", v.ServiceNumber, v.Username, v.Name, v.Phone, v.Passcode, v.IsActive)
	}
	return w.Flush()
}
