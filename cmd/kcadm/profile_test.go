package main

import (
	"reflect"
	"testing"

	"github.com/giulio1979/kafka-connect-admin/pkg/config"
)

func TestProfileNamesSorted(t *testing.T) {
	cfg := &config.File{Profiles: map[string]config.Profile{
		"staging": {Name: "staging"},
		"dev":     {Name: "dev"},
		"prod":    {Name: "prod"},
	}}
	want := []string{"dev", "prod", "staging"}
	// Map order varies between runs; the listing must not.
	for i := 0; i < 10; i++ {
		if got := profileNames(cfg); !reflect.DeepEqual(got, want) {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
}

func TestProfileNamesEmpty(t *testing.T) {
	if got := profileNames(&config.File{}); len(got) != 0 {
		t.Fatalf("names = %v, want none", got)
	}
}
