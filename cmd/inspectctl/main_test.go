package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFieldsListsVisiblePaths(t *testing.T) {
	out, err := runCLI(t, "fields", "casque")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if !strings.Contains(out, "antecedentProduit.comment") || !strings.Contains(out, "jugulaire.sangle") {
		t.Fatalf("missing paths:\n%s", out)
	}
	if strings.Contains(out, "dureeVieNonDepassee") {
		t.Fatalf("hidden control listed without --hidden:\n%s", out)
	}
	out, err = runCLI(t, "fields", "casque", "--hidden")
	if err != nil || !strings.Contains(out, "dureeVieNonDepassee") {
		t.Fatalf("--hidden: err=%v\n%s", err, out)
	}
	if _, err := runCLI(t, "fields", "gloves"); err == nil || !strings.Contains(err.Error(), "harnais, casque") {
		t.Fatalf("unknown type: want known-type hint, got %v", err)
	}
}

func TestFieldsWithoutTypeListsTypes(t *testing.T) {
	out, err := runCLI(t, "fields")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	for _, want := range []string{"harnais", "casque"} {
		if !strings.Contains(out, want) {
			t.Fatalf("type %q not listed:\n%s", want, out)
		}
	}
}

func TestStateDerivesFromDueDate(t *testing.T) {
	cases := map[string]string{
		"16/10/2026": "OK",
		"15/10/2026": "INVALID",
		"garbage":    "INVALID",
	}
	for due, want := range cases {
		out, err := runCLI(t, "state", due, "--today", "15/10/2026")
		if err != nil {
			t.Fatalf("state %s: %v", due, err)
		}
		if strings.TrimSpace(out) != want {
			t.Fatalf("state %s: got=%q want=%q", due, out, want)
		}
	}
}

func TestQRURLUsesOrigin(t *testing.T) {
	id := uuid.MustParse("6f1c1d0e-8a51-4c0e-9d5e-1f2a3b4c5d6e")
	out, err := runCLI(t, "qr", "url", id.String(), "Harnais Été 01", "--origin", "https://epi.test/")
	if err != nil {
		t.Fatalf("qr url: %v", err)
	}
	want := "https://epi.test/inspection/" + id.String() + "-harnais-ete-01"
	if strings.TrimSpace(out) != want {
		t.Fatalf("got=%q want=%q", out, want)
	}
}

func TestShowAndExportAgainstServer(t *testing.T) {
	id := uuid.New()
	rec := inspection.Record{
		ID:                      id,
		EquipmentType:           "harnais",
		ReferenceInterne:        "H-9",
		DateProchaineInspection: "01/01/2000",
		Etat:                    inspection.StateInvalid,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/inspections/" + id.String():
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(rec)
		case "/api/inspections/" + id.String() + "/export.xlsx":
			_, _ = w.Write([]byte("PK-xlsx"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	timeNow = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }
	defer func() { timeNow = time.Now }()

	out, err := runCLI(t, "show", id.String(), "--server", srv.URL)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"H-9", "INVALID", "V="} {
		if !strings.Contains(out, want) {
			t.Fatalf("show output missing %q:\n%s", want, out)
		}
	}

	dest := filepath.Join(t.TempDir(), "out.xlsx")
	if _, err := runCLI(t, "export", id.String(), "--server", srv.URL, "-o", dest); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "PK-xlsx" {
		t.Fatalf("export file: %q err=%v", data, err)
	}

	if _, err := runCLI(t, "show", uuid.NewString(), "--server", srv.URL); err == nil {
		t.Fatalf("missing record should fail")
	}
}

func TestProfileRegisterAndGet(t *testing.T) {
	var stored inspection.Profile
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/equipment-profiles":
			if err := json.NewDecoder(r.Body).Decode(&stored); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			stored.ID = uuid.New()
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(stored)
		case r.Method == http.MethodGet && r.URL.Path == "/api/equipment-profile/"+stored.Code:
			_ = json.NewEncoder(w).Encode(stored)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"not found","code":"profile_not_found"}}`))
		}
	}))
	defer srv.Close()

	out, err := runCLI(t, "profile", "register", "--server", srv.URL,
		"--code", "ABC123", "--reference", "H-001", "--serial", "SN9", "--standards", "EN361")
	if err != nil {
		t.Fatalf("profile register: %v", err)
	}
	if !strings.Contains(out, "registered ABC123") {
		t.Fatalf("register output:\n%s", out)
	}
	if stored.ReferenceInterne != "H-001" || stored.NumeroSerie != "SN9" || stored.Normes != "EN361" {
		t.Fatalf("posted profile: %+v", stored)
	}

	out, err = runCLI(t, "profile", "get", "ABC123", "--server", srv.URL)
	if err != nil {
		t.Fatalf("profile get: %v", err)
	}
	if !strings.Contains(out, "H-001") || !strings.Contains(out, "EN361") {
		t.Fatalf("get output:\n%s", out)
	}

	if _, err := runCLI(t, "profile", "get", "NOPE", "--server", srv.URL); err == nil {
		t.Fatalf("unknown profile should fail")
	}
	if _, err := runCLI(t, "profile", "register", "--server", srv.URL); err == nil || !strings.Contains(err.Error(), "--code") {
		t.Fatalf("register without code: %v", err)
	}
}

func TestRemoteCommandsNeedServer(t *testing.T) {
	t.Setenv("INSPECTION_SERVER", "")
	if _, err := runCLI(t, "show", uuid.NewString()); err == nil || !strings.Contains(err.Error(), "no server") {
		t.Fatalf("expected no-server error, got %v", err)
	}
}
