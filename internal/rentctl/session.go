package rentctl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"RentPredict/internal/domain/models"
	"RentPredict/internal/form"
)

// Session walks the user through the form, submits it and prints the outcome.
type Session struct {
	prompter Prompter
	ctl      *form.Controller
	out      io.Writer
}

func NewSession(p Prompter, s form.Submitter, out io.Writer) *Session {
	return &Session{prompter: p, ctl: form.NewController(s), out: out}
}

// Run asks for every field, then re-asks only the fields that failed
// validation until the form is clean and one submission has completed.
func (s *Session) Run(ctx context.Context) error {
	values := form.NewValues()
	pending := models.Fields

	var submitErr error
	for {
		for _, f := range pending {
			v, err := s.ask(ctx, f, values[f.Name])
			if err != nil {
				return err
			}
			values[f.Name] = v
		}

		fmt.Fprintln(s.out, "Calculating...")
		errs, err := s.ctl.Submit(ctx, values)
		if errors.Is(err, form.ErrInvalid) {
			pending = pending[:0:0]
			for _, f := range models.Fields {
				if msg, ok := errs[f.Name]; ok {
					fmt.Fprintf(s.out, "  %s: %s\n", f.Label, msg)
					pending = append(pending, f)
				}
			}
			continue
		}
		submitErr = err
		break
	}

	if res, ok := s.ctl.Result(); ok {
		fmt.Fprintf(s.out, "\nInfo:                   %s\n", res.Info)
		fmt.Fprintf(s.out, "Suggested Base Rent:    %s\n", res.SuggestedBaseRent)
		fmt.Fprintf(s.out, "Suggested Rent of Care: %s\n", res.SuggestedRentOfCare)
		fmt.Fprintf(s.out, "Recommendation:         %s\n", res.Recommendation)
		return nil
	}
	msg, ok := s.ctl.Failure()
	if !ok {
		return submitErr
	}
	fmt.Fprintf(s.out, "\nError: %s\n", msg)
	return errors.New(msg)
}

func (s *Session) ask(ctx context.Context, f models.FieldSpec, current string) (string, error) {
	if f.Kind == models.KindEnum {
		return s.prompter.Select(ctx, f.Label, f.Options, current)
	}
	return s.prompter.Input(ctx, f.Label, current, func(v string) error {
		if !form.AcceptKeystroke(f.Name, v) {
			return errors.New("digits and at most one decimal point")
		}
		return nil
	})
}
