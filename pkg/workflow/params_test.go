package workflow_test

import (
	"errors"
	"testing"

	"github.com/opst/dmcatalog/pkg/cmp"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	"github.com/opst/dmcatalog/pkg/workflow"
)

func TestParams_List(t *testing.T) {
	for name, testcase := range map[string]struct {
		value string
		want  []string
	}{
		"not given":         {value: "  ", want: nil},
		"single":            {value: "a", want: []string{"a"}},
		"delimited":         {value: "a| b |c", want: []string{"a", "b", "c"}},
		"escaped delimiter": {value: `a\|b|c`, want: []string{"a|b", "c"}},
		"escaped escape":    {value: `a\\|b`, want: []string{`a\`, "b"}},
		"trailing escape":   {value: `a\`, want: []string{`a\`}},
		"empty item":        {value: "a||b", want: []string{"a", "", "b"}},
	} {
		t.Run(name, func(t *testing.T) {
			got := workflow.Params{"list": testcase.value}.List("list")
			if testcase.want == nil {
				if got != nil {
					t.Errorf("expected nil, but got %v", got)
				}
				return
			}
			if !cmp.SliceEq(got, testcase.want) {
				t.Errorf("got %q, want %q", got, testcase.want)
			}
		})
	}
}

func TestParams_Int(t *testing.T) {
	p := workflow.Params{"version": " 12 ", "bad": "NOT_AN_INTEGER"}

	if got, err := p.Int("version", "Version", true); err != nil || *got != 12 {
		t.Errorf("got (%v, %v)", got, err)
	}
	if got, err := p.Int("missing", "Missing", false); err != nil || got != nil {
		t.Errorf("got (%v, %v)", got, err)
	}

	for name, testcase := range map[string]struct {
		param    string
		required bool
		want     string
	}{
		"not an integer": {
			param: "bad", want: `"Bad" must be a valid integer value.`,
		},
		"required but missing": {
			param: "missing", required: true, want: `"Missing" must be specified.`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			label := map[string]string{"bad": "Bad", "missing": "Missing"}[testcase.param]
			_, err := p.Int(testcase.param, label, testcase.required)
			if !errors.Is(err, domerr.ErrValidation) {
				t.Fatalf("expected ErrValidation, but got %v", err)
			}
			if err.Error() != testcase.want {
				t.Errorf("message: %s", err)
			}
		})
	}
}

func TestParams_Bool(t *testing.T) {
	p := workflow.Params{"yes": "TRUE", "no": "false", "bad": "NOT_A_BOOLEAN"}

	for name, testcase := range map[string]struct {
		param string
		def   bool
		want  bool
	}{
		"true":                 {param: "yes", want: true},
		"false":                {param: "no", def: true, want: false},
		"default when missing": {param: "missing", def: true, want: true},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := p.Bool(testcase.param, testcase.param, testcase.def)
			if err != nil {
				t.Fatal(err)
			}
			if got != testcase.want {
				t.Errorf("got %v", got)
			}
		})
	}

	_, err := p.Bool("bad", "createNewVersion", false)
	if want := `"createNewVersion" must be a valid boolean value of "true" or "false".`; err == nil || err.Error() != want {
		t.Errorf("unexpected error: %v", err)
	}
}
