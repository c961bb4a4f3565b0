package question

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed bank.schema.json
var bankSchemaJSON []byte

const bankSchemaURL = "schema://bank.json"

var (
	bankSchemaOnce sync.Once
	bankSchema     *jsonschema.Schema
	bankSchemaErr  error
)

// Bank is a question bank as exchanged with the storage collaborator.
type Bank struct {
	Topics    []Topic    `json:"topics"`
	Questions []Question `json:"questions"`
}

// BankError lists the semantic problems found in a bank that passed the
// structural schema check.
type BankError struct {
	Problems []string
}

func (e *BankError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid bank: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid bank: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

// ParseBank validates raw JSON against the bank schema and decodes it.
// Questions whose correct answer is not one of their options, and duplicate
// question ids, are reported as a *BankError.
func ParseBank(raw []byte) (*Bank, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse bank: %w", err)
	}

	schema, err := compiledBankSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var bank Bank
	if err := json.Unmarshal(raw, &bank); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}

	var problems []string
	seen := make(map[string]bool, len(bank.Questions))
	for _, q := range bank.Questions {
		if seen[q.ID] {
			problems = append(problems, fmt.Sprintf("duplicate question id %q", q.ID))
		}
		seen[q.ID] = true
		if !q.Answerable() {
			problems = append(problems, fmt.Sprintf("question %q: correct answer is not an option", q.ID))
		}
	}
	if len(problems) > 0 {
		return &bank, &BankError{Problems: problems}
	}
	return &bank, nil
}

func compiledBankSchema() (*jsonschema.Schema, error) {
	bankSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(bankSchemaJSON))
		if err != nil {
			bankSchemaErr = fmt.Errorf("parse bank schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(bankSchemaURL, doc); err != nil {
			bankSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		bankSchema, bankSchemaErr = c.Compile(bankSchemaURL)
		if bankSchemaErr != nil {
			bankSchemaErr = fmt.Errorf("compile: %w", bankSchemaErr)
		}
	})
	return bankSchema, bankSchemaErr
}

// IsBankError reports whether err carries semantic bank problems.
func IsBankError(err error) bool {
	var be *BankError
	return errors.As(err, &be)
}
