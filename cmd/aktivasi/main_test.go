package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseCmd_Accepts(t *testing.T) {
	cmd := parseCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("SN ONT : ZTEGC0FFEE12\nNIK ONT : 99887766\nOWNER : BGES\n"))
	cmd.SetArgs([]string{"--user", "budi"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("parse failed: %v\n%s", err, out.String())
	}
	for _, want := range []string{"Dialect: GENERIC", "ZTEGC0FFEE12", "99887766", "budi", "OK"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestParseCmd_RejectsMissingKey(t *testing.T) {
	cmd := parseCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("OWNER : BGES\n"))
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing key fields")
	}
	if !strings.Contains(out.String(), "(missing)") || !strings.Contains(out.String(), "REJECTED") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestTokenCmd_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cmd := tokenCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"budi"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestTokenCmd_PrintsToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	cmd := tokenCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"budi", "--ttl", "1h"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("token failed: %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(out.String()), "."); len(parts) != 3 {
		t.Errorf("expected a JWT, got %q", out.String())
	}
}
