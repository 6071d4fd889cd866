package gcp

import (
	"reflect"
	"testing"

	"google.golang.org/api/option"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestClientOptionsPrecedence(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want []option.ClientOption
	}{
		{name: "none", env: map[string]string{}},
		{name: "blank values skipped", env: map[string]string{"INSPECTION_GCP_CREDENTIALS": "  ", "GOOGLE_APPLICATION_CREDENTIALS": ""}},
		{
			name: "adc file",
			env:  map[string]string{"GOOGLE_APPLICATION_CREDENTIALS": "/secrets/adc.json"},
			want: []option.ClientOption{option.WithCredentialsFile("/secrets/adc.json")},
		},
		{
			name: "inline json beats file",
			env: map[string]string{
				"GOOGLE_APPLICATION_CREDENTIALS_JSON": ` {"type":"service_account"}`,
				"GOOGLE_APPLICATION_CREDENTIALS":      "/secrets/adc.json",
			},
			want: []option.ClientOption{option.WithCredentialsJSON([]byte(`{"type":"service_account"}`))},
		},
		{
			name: "inspection account wins",
			env: map[string]string{
				"INSPECTION_GCP_CREDENTIALS":          "/secrets/inspection.json",
				"GOOGLE_APPLICATION_CREDENTIALS_JSON": `{"type":"service_account"}`,
			},
			want: []option.ClientOption{option.WithCredentialsFile("/secrets/inspection.json")},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := clientOptions(envMap(tc.env))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("clientOptions: want %#v got %#v", tc.want, got)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := collapseWhitespace(" N°\u00a0de  série\n SN9 "); got != "N° de série SN9" {
		t.Fatalf("collapseWhitespace: %q", got)
	}
}
