package bootstrap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kbukum/kafkaboot/brokerconf"
)

func TestSummary_TrackSourcesAndMasking(t *testing.T) {
	res := &Result{
		Discovered: brokerconf.Map{"KAFKA_ADVERTISED_HOST_NAME": "10.0.0.5"},
		Config: brokerconf.Map{
			"KAFKA_ADVERTISED_HOST_NAME":  "10.0.0.5",
			"KAFKA_PORT":                  "9092",
			"KAFKA_SASL_PASSWORD":         "hunter2",
			"ZOOKEEPER_CONNECTION_STRING": "localhost:2181/kafka",
			"PATH":                        "/usr/bin",
		},
	}
	env := brokerconf.Map{"KAFKA_SASL_PASSWORD": "hunter2", "PATH": "/usr/bin"}

	s := NewSummary("r1", "dns")
	s.Track(res, env, []string{"KAFKA_PORT", "KAFKA_SASL_PASSWORD", "ZOOKEEPER_CONNECTION_STRING"})

	got := map[string]ValueInfo{}
	var order []string
	for _, v := range s.Values() {
		got[v.Key] = v
		order = append(order, v.Key)
	}

	if _, ok := got["PATH"]; ok {
		t.Error("unrelated environment values should not be tracked")
	}
	if strings.Join(order, ",") != "KAFKA_ADVERTISED_HOST_NAME,KAFKA_PORT,KAFKA_SASL_PASSWORD,ZOOKEEPER_CONNECTION_STRING" {
		t.Errorf("values should be sorted by key, got %v", order)
	}
	if got["KAFKA_SASL_PASSWORD"].Value != masked {
		t.Errorf("secret not masked: %q", got["KAFKA_SASL_PASSWORD"].Value)
	}

	sources := map[string]string{
		"KAFKA_ADVERTISED_HOST_NAME":  "discovered",
		"KAFKA_PORT":                  "default",
		"KAFKA_SASL_PASSWORD":         "env",
		"ZOOKEEPER_CONNECTION_STRING": "derived",
	}
	for k, want := range sources {
		if got[k].Source != want {
			t.Errorf("%s: source %q, want %q", k, got[k].Source, want)
		}
	}
	if got["KAFKA_ADVERTISED_HOST_NAME"].Used {
		t.Error("discovered key not in template should be marked unused")
	}
}

func TestSummary_Display(t *testing.T) {
	s := NewSummary("r1", "registry")
	var buf bytes.Buffer
	s.Display(&buf)
	if !strings.Contains(buf.String(), "No values resolved") {
		t.Errorf("unexpected empty display: %s", buf.String())
	}

	s.Track(&Result{Config: brokerconf.Map{"KAFKA_PORT": "9092"}}, nil, []string{"KAFKA_PORT"})
	buf.Reset()
	s.Display(&buf)
	out := buf.String()
	if !strings.Contains(out, "strategy: registry") || !strings.Contains(out, "└── ⚙️ KAFKA_PORT=9092") {
		t.Errorf("unexpected display:\n%s", out)
	}
}
