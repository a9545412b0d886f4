// Command sdrop is a thin shell around the disclosure core: it builds and
// encrypts vulnerability reports, manages organization public keys, and
// unwraps received submissions.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sealdrop/sealdrop/internal/crypto/envelope"
	"github.com/sealdrop/sealdrop/internal/dedup"
	"github.com/sealdrop/sealdrop/internal/migrate"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/registry"
	"github.com/sealdrop/sealdrop/internal/report"
	"github.com/sealdrop/sealdrop/internal/repository/postgres"
	"github.com/sealdrop/sealdrop/internal/submission"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `sdrop CLI
Usage:
  sdrop [-dsn postgres://...] <cmd> [args]

Commands:
  version
  keygen    -passphrase <pw> [-bits 4096] -out <keyfile.json> [-pub <pub.jwk>]
  register  -org <id> -pub <pub.jwk>                 (requires -dsn)
  resolve   -org <id>                                (requires -dsn)
  revoke    -org <id>                                (requires -dsn)
  report    -org <id> -title <t> -desc <d> -severity <s>
            [-systems a,b] [-remediation r] [-cve CVE-...,...]
            [-pub <pub.jwk>] [-direct] [-out <submission.json>]
  decrypt   -in <submission.json> -key <keyfile.json> -passphrase <pw>
`)
	os.Exit(2)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeOut(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// openRegistry migrates the schema and wires a postgres-backed registry.
func openRegistry(ctx context.Context, dsn string, logger *zap.Logger) (*registry.Registry, *postgres.DB, error) {
	if dsn == "" {
		return nil, nil, fmt.Errorf("command requires -dsn")
	}
	if err := migrate.Up(ctx, dsn); err != nil {
		return nil, nil, fmt.Errorf("migrate up: %w", err)
	}
	db, err := postgres.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("registry store ready")
	return registry.New(postgres.NewKeyRepo(db)), db, nil
}

func main() {
	dsn := flag.String("dsn", "", "PostgreSQL DSN for registry-backed commands")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	switch cmd {

	case "version":
		fmt.Printf("sdrop %s (%s)\n", version, buildDate)

	case "keygen":
		fs := flag.NewFlagSet("keygen", flag.ExitOnError)
		bits := fs.Int("bits", 4096, "RSA key size")
		passphrase := fs.String("passphrase", "", "passphrase protecting the private key")
		out := fs.String("out", "keyfile.json", "key file output path")
		pubOut := fs.String("pub", "", "optional public JWK output path")
		_ = fs.Parse(args)

		kf, err := envelope.GenerateKeyPair(*bits, *passphrase)
		if err != nil {
			fail(err)
		}
		kfJSON, err := json.MarshalIndent(kf, "", "  ")
		if err != nil {
			fail(err)
		}
		if err := writeOut(*out, kfJSON); err != nil {
			fail(err)
		}
		if *pubOut != "" {
			pubJSON, err := json.Marshal(kf.PublicKey)
			if err != nil {
				fail(err)
			}
			if err := writeOut(*pubOut, pubJSON); err != nil {
				fail(err)
			}
		}
		logger.Info("key pair generated",
			zap.String("key_id", kf.KeyID.String()),
			zap.String("fingerprint", kf.Fingerprint),
		)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		org := fs.String("org", "", "organization identifier")
		pubPath := fs.String("pub", "", "public JWK file")
		_ = fs.Parse(args)
		if *org == "" || *pubPath == "" {
			fail(fmt.Errorf("need -org and -pub"))
		}

		raw, err := readAll(*pubPath)
		if err != nil {
			fail(err)
		}
		key, err := envelope.ParsePublicKey(raw)
		if err != nil {
			fail(err)
		}
		reg, db, err := openRegistry(ctx, *dsn, logger)
		if err != nil {
			fail(err)
		}
		defer db.Close()
		if err := reg.Register(ctx, *org, key); err != nil {
			fail(err)
		}
		logger.Info("key registered", zap.String("fingerprint", envelope.Fingerprint(key)))

	case "resolve":
		fs := flag.NewFlagSet("resolve", flag.ExitOnError)
		org := fs.String("org", "", "organization identifier")
		_ = fs.Parse(args)
		if *org == "" {
			fail(fmt.Errorf("need -org"))
		}

		reg, db, err := openRegistry(ctx, *dsn, logger)
		if err != nil {
			fail(err)
		}
		defer db.Close()
		key, err := reg.Resolve(ctx, *org)
		if err != nil {
			fail(err)
		}
		printJSON(key)

	case "revoke":
		fs := flag.NewFlagSet("revoke", flag.ExitOnError)
		org := fs.String("org", "", "organization identifier")
		_ = fs.Parse(args)
		if *org == "" {
			fail(fmt.Errorf("need -org"))
		}

		reg, db, err := openRegistry(ctx, *dsn, logger)
		if err != nil {
			fail(err)
		}
		defer db.Close()
		if err := reg.Revoke(ctx, *org); err != nil {
			fail(err)
		}
		fmt.Println("revoked")

	case "report":
		fs := flag.NewFlagSet("report", flag.ExitOnError)
		org := fs.String("org", "", "organization identifier")
		title := fs.String("title", "", "vulnerability title")
		desc := fs.String("desc", "", "vulnerability description")
		severity := fs.String("severity", "", "severity (critical|high|medium|low|info)")
		systems := fs.String("systems", "", "comma-separated affected systems")
		remediation := fs.String("remediation", "", "remediation guidance")
		cve := fs.String("cve", "", "comma-separated CVE ids")
		pubPath := fs.String("pub", "", "public JWK file (skips registry lookup)")
		direct := fs.Bool("direct", false, "use the direct RSA-OAEP strategy")
		out := fs.String("out", "", "submission output path (default stdout)")
		_ = fs.Parse(args)
		if *org == "" || *title == "" || *desc == "" || *severity == "" {
			fail(fmt.Errorf("need -org, -title, -desc and -severity"))
		}

		r, err := report.New(report.Params{
			Title:           *title,
			Description:     *desc,
			Severity:        *severity,
			AffectedSystems: splitCSV(*systems),
			Remediation:     *remediation,
			CVEIDs:          splitCSV(*cve),
		})
		if err != nil {
			fail(err)
		}

		var (
			key *model.PublicKey
			log dedup.Log = dedup.NewMemory()
		)
		if *pubPath != "" {
			raw, err := readAll(*pubPath)
			if err != nil {
				fail(err)
			}
			if key, err = envelope.ParsePublicKey(raw); err != nil {
				fail(err)
			}
		} else {
			reg, db, err := openRegistry(ctx, *dsn, logger)
			if err != nil {
				fail(err)
			}
			defer db.Close()
			if key, err = reg.Resolve(ctx, *org); err != nil {
				fail(err)
			}
			log = dedup.NewPGWithExecer(db.Pool)
		}

		method := model.MethodHybrid
		if *direct {
			method = model.MethodDirect
		}
		env, err := envelope.Encrypt(r, key, method)
		if err != nil {
			fail(err)
		}
		sub, err := submission.Build(env, *org, envelope.Fingerprint(key))
		if err != nil {
			fail(err)
		}
		first, err := log.Record(ctx, sub.SubmissionID)
		if err != nil {
			logger.Warn("dedup check failed", zap.Error(err))
		} else if !first {
			logger.Warn("identical submission seen before", zap.String("submission_id", sub.SubmissionID))
		}
		data, err := submission.Marshal(sub)
		if err != nil {
			fail(err)
		}
		if err := writeOut(*out, data); err != nil {
			fail(err)
		}

	case "decrypt":
		fs := flag.NewFlagSet("decrypt", flag.ExitOnError)
		in := fs.String("in", "", "submission or envelope JSON file")
		keyPath := fs.String("key", "", "key file")
		passphrase := fs.String("passphrase", "", "key file passphrase")
		_ = fs.Parse(args)
		if *in == "" || *keyPath == "" {
			fail(fmt.Errorf("need -in and -key"))
		}

		rawKF, err := readAll(*keyPath)
		if err != nil {
			fail(err)
		}
		var kf model.KeyFile
		if err := json.Unmarshal(rawKF, &kf); err != nil {
			fail(fmt.Errorf("decode key file: %w", err))
		}
		priv, err := envelope.OpenKeyFile(&kf, *passphrase)
		if err != nil {
			fail(err)
		}

		rawSub, err := readAll(*in)
		if err != nil {
			fail(err)
		}
		env, err := envelopeFromInput(rawSub)
		if err != nil {
			fail(err)
		}
		r, err := envelope.Decrypt(env, priv)
		if err != nil {
			fail(err)
		}
		printJSON(r)

	default:
		usage()
	}
}
