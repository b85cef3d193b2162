package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"

	"portfolio-api/internal/apperrors"
	"portfolio-api/internal/config"

	"github.com/go-playground/validator/v10"
)

// Client-facing messages.
const (
	MsgInvalidPayload     = "Invalid payload"
	MsgInvalidJSON        = "Invalid JSON body"
	MsgInvalidName        = "Invalid name"
	MsgInvalidDescription = "Invalid description"
	MsgSkillsNotArray     = "Skills must be an array"
)

// Validator checks payloads against the configured limits. Lengths are
// counted in UTF-16 code units, so a character outside the Basic
// Multilingual Plane (most emoji) counts as two. It is safe for concurrent
// use.
type Validator struct {
	limits   config.Limits
	validate *validator.Validate

	nameRule        string
	descriptionRule string
	skillsRule      string
	skillRule       string
}

// NewValidator builds a validator for limits.
func NewValidator(limits config.Limits) *Validator {
	validate := validator.New()
	if err := validate.RegisterValidation(utf16MaxTag, validateUTF16Max); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", utf16MaxTag, err))
	}

	return &Validator{
		limits:          limits,
		validate:        validate,
		nameRule:        fmt.Sprintf("%s=%d", utf16MaxTag, limits.MaxNameLength),
		descriptionRule: fmt.Sprintf("%s=%d", utf16MaxTag, limits.MaxDescriptionLength),
		skillsRule:      fmt.Sprintf("max=%d", limits.MaxSkills),
		skillRule:       fmt.Sprintf("dive,%s=%d", utf16MaxTag, limits.MaxSkillLength),
	}
}

const utf16MaxTag = "utf16max"

// validateUTF16Max is the utf16max rule: the string field holds at most
// param UTF-16 code units.
func validateUTF16Max(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return UTF16Len(field.String()) <= limit
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// Limits returns the limits the validator enforces.
func (v *Validator) Limits() config.Limits {
	return v.limits
}

// ParseCreate decodes and validates a create body. Rules are applied in the
// order name, description, skills, each skill; the first failure wins.
func (v *Validator) ParseCreate(body []byte) (CreateInput, error) {
	fields, err := decodeObject(body, false)
	if err != nil {
		return CreateInput{}, err
	}

	var in CreateInput

	raw, ok := fields["name"]
	if !ok {
		return CreateInput{}, apperrors.InvalidInput(MsgInvalidName)
	}
	name, ok := decodeString(raw)
	if !ok {
		return CreateInput{}, apperrors.InvalidInput(MsgInvalidName)
	}
	if err := v.checkName(name); err != nil {
		return CreateInput{}, err
	}
	in.Name = name

	if raw, ok := fields["description"]; ok {
		desc, ok := decodeString(raw)
		if !ok {
			return CreateInput{}, apperrors.InvalidInput(MsgInvalidDescription)
		}
		if err := v.checkDescription(desc); err != nil {
			return CreateInput{}, err
		}
		in.Description = desc
	}

	if raw, ok := fields["skills"]; ok {
		skills, err := v.decodeSkills(raw)
		if err != nil {
			return CreateInput{}, err
		}
		in.Skills = skills
	}

	return in, nil
}

// ParseUpdate decodes and validates an update body. Every field is optional;
// an empty body is the same as {}.
func (v *Validator) ParseUpdate(body []byte) (UpdateInput, error) {
	fields, err := decodeObject(body, true)
	if err != nil {
		return UpdateInput{}, err
	}

	var in UpdateInput

	if raw, ok := fields["name"]; ok {
		name, ok := decodeString(raw)
		if !ok {
			return UpdateInput{}, apperrors.InvalidInput(MsgInvalidName)
		}
		if err := v.checkName(name); err != nil {
			return UpdateInput{}, err
		}
		in.Name = &name
	}

	if raw, ok := fields["description"]; ok {
		desc, ok := decodeString(raw)
		if !ok {
			return UpdateInput{}, apperrors.InvalidInput(MsgInvalidDescription)
		}
		if err := v.checkDescription(desc); err != nil {
			return UpdateInput{}, err
		}
		in.Description = &desc
	}

	if raw, ok := fields["skills"]; ok {
		skills, err := v.decodeSkills(raw)
		if err != nil {
			return UpdateInput{}, err
		}
		in.Skills = &skills
	}

	return in, nil
}

// ValidateCreate applies the create rules to an already typed payload.
func (v *Validator) ValidateCreate(in CreateInput) error {
	if err := v.checkName(in.Name); err != nil {
		return err
	}
	if err := v.checkDescription(in.Description); err != nil {
		return err
	}
	return v.checkSkills(in.Skills)
}

// ValidateUpdate applies the update rules to the fields present in in.
func (v *Validator) ValidateUpdate(in UpdateInput) error {
	if in.Name != nil {
		if err := v.checkName(*in.Name); err != nil {
			return err
		}
	}
	if in.Description != nil {
		if err := v.checkDescription(*in.Description); err != nil {
			return err
		}
	}
	if in.Skills != nil {
		return v.checkSkills(*in.Skills)
	}
	return nil
}

func (v *Validator) checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.InvalidInput(MsgInvalidName)
	}
	if v.validate.Var(name, v.nameRule) != nil {
		return apperrors.InvalidInput(fmt.Sprintf("Name exceeds maximum length of %d", v.limits.MaxNameLength))
	}
	return nil
}

func (v *Validator) checkDescription(desc string) error {
	if v.validate.Var(desc, v.descriptionRule) != nil {
		return apperrors.InvalidInput(fmt.Sprintf("Description exceeds maximum length of %d", v.limits.MaxDescriptionLength))
	}
	return nil
}

func (v *Validator) checkSkills(skills []string) error {
	if v.validate.Var(skills, v.skillsRule) != nil {
		return apperrors.InvalidInput(fmt.Sprintf("Skills list exceeds maximum length of %d", v.limits.MaxSkills))
	}
	if v.validate.Var(skills, v.skillRule) != nil {
		return v.skillError()
	}
	return nil
}

func (v *Validator) skillError() error {
	return apperrors.InvalidInput(fmt.Sprintf("Each skill must be a string up to %d characters", v.limits.MaxSkillLength))
}

// decodeSkills checks the array shape and count before the element types so
// that an over-long list is reported as such even if it holds non-strings.
func (v *Validator) decodeSkills(raw json.RawMessage) ([]string, error) {
	if firstByte(raw) != '[' {
		return nil, apperrors.InvalidInput(MsgSkillsNotArray)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperrors.InvalidInput(MsgSkillsNotArray)
	}
	if v.validate.Var(items, v.skillsRule) != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Skills list exceeds maximum length of %d", v.limits.MaxSkills))
	}

	skills := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := decodeString(item)
		if !ok {
			return nil, v.skillError()
		}
		skills = append(skills, s)
	}
	if v.validate.Var(skills, v.skillRule) != nil {
		return nil, v.skillError()
	}
	return skills, nil
}

// decodeObject parses body as a JSON object. A blank body is an empty object
// when allowEmpty is set and an invalid payload otherwise.
func decodeObject(body []byte, allowEmpty bool) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		if allowEmpty {
			return map[string]json.RawMessage{}, nil
		}
		return nil, apperrors.InvalidInput(MsgInvalidPayload)
	}
	if !json.Valid(trimmed) {
		return nil, apperrors.InvalidInput(MsgInvalidJSON)
	}
	if trimmed[0] != '{' {
		return nil, apperrors.InvalidInput(MsgInvalidPayload)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, apperrors.InvalidInput(MsgInvalidPayload)
	}
	return fields, nil
}

// decodeString accepts JSON strings only; null and other types are rejected.
func decodeString(raw json.RawMessage) (string, bool) {
	if firstByte(raw) != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
