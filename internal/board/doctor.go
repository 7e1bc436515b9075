package board

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"jobboard/internal/config"
	"jobboard/internal/errors"
	"jobboard/internal/gateway"
	"jobboard/internal/localstore"
)

const doctorProbeKey = "doctor-probe"

type DoctorResult struct {
	OK     bool          `json:"ok"`
	Checks []DoctorCheck `json:"checks"`
}

type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Doctor checks the loaded configuration, a write/read round trip against
// the configured store and whether the job source answers. Unlike Open it
// does not degrade to memory, so a broken backend shows up here.
func Doctor(ctx context.Context, cfg config.Config, warnings []string) DoctorResult {
	checks := make([]DoctorCheck, 0, 3)
	checks = append(checks, configCheck(warnings))
	checks = append(checks, storageCheck(ctx, cfg))
	checks = append(checks, sourceCheck(ctx, cfg))

	ok := true
	for _, c := range checks {
		if !c.OK {
			ok = false
			break
		}
	}
	return DoctorResult{OK: ok, Checks: checks}
}

func configCheck(warnings []string) DoctorCheck {
	if len(warnings) == 0 {
		return DoctorCheck{Name: "config", OK: true, Message: "valid"}
	}
	return DoctorCheck{
		Name:    "config",
		OK:      false,
		Message: fmt.Sprintf("%d value(s) replaced by defaults: %s", len(warnings), warnings[0]),
	}
}

func storageCheck(ctx context.Context, cfg config.Config) DoctorCheck {
	name := "storage:" + cfg.Storage.Backend
	kv, err := localstore.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return DoctorCheck{Name: name, OK: false, Message: err.Error()}
	}
	defer kv.Close()

	want := []byte(time.Now().UTC().Format(time.RFC3339Nano))
	if err := kv.Put(ctx, doctorProbeKey, want); err != nil {
		return DoctorCheck{Name: name, OK: false, Message: err.Error()}
	}
	got, err := kv.Get(ctx, doctorProbeKey)
	if err != nil {
		return DoctorCheck{Name: name, OK: false, Message: err.Error()}
	}
	if !bytes.Equal(got, want) {
		return DoctorCheck{Name: name, OK: false, Message: "read back a different value than written"}
	}
	return DoctorCheck{Name: name, OK: true, Message: "read/write ok"}
}

func sourceCheck(ctx context.Context, cfg config.Config) DoctorCheck {
	client := gateway.New(gateway.Options{
		BaseURL: cfg.Source.BaseURL,
		Timeout: cfg.SourceTimeout(),
	})
	name := "source"
	jobs, err := client.FetchAll(ctx)
	if err != nil {
		msg := err.Error()
		var fe *gateway.FetchError
		if errors.As(err, &fe) && fe.Timeout {
			msg = "timed out after " + cfg.SourceTimeout().String()
		}
		return DoctorCheck{Name: name, OK: false, Message: msg + " (built-in postings will be used)"}
	}
	return DoctorCheck{Name: name, OK: true, Message: fmt.Sprintf("%s answered with %d job(s)", client.BaseURL(), len(jobs))}
}
