package main

import (
	"strings"
	"testing"
)

func TestLintSource(t *testing.T) {
	src := "package q\n\n" +
		"const QGood = `--sql 0b7b0f5e-1c1f-4c43-9d2e-4a4f7b7f6c01\nselect 1;`\n\n" +
		"const QMissing = `select id from uploads;`\n\n" +
		"const QSchema = `create table if not exists t (id int);`\n\n" +
		"const QReused = `--sql 0b7b0f5e-1c1f-4c43-9d2e-4a4f7b7f6c01\nupdate uploads set status = 'FAILED';`\n\n" +
		"const message = \"failed to update upload\"\n"

	seen := map[string]markerSite{}
	got, err := lintSource("q.go", []byte(src), seen)
	if err != nil {
		t.Fatalf("lintSource error: %v", err)
	}
	var names []string
	for _, v := range got {
		names = append(names, v.name)
	}
	if strings.Join(names, ",") != "QMissing,QSchema,QReused" {
		t.Fatalf("violations = %v, want QMissing,QSchema,QReused", names)
	}
	if !strings.Contains(got[2].message, "q.go:3") {
		t.Fatalf("reuse message = %q", got[2].message)
	}
}
