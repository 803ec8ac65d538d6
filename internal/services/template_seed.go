package services

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobridge-risk/internal/data/repos"
	types "github.com/yungbote/neurobridge-risk/internal/domain"
	"github.com/yungbote/neurobridge-risk/internal/pkg/dbctx"
	apperr "github.com/yungbote/neurobridge-risk/internal/pkg/errors"
	"github.com/yungbote/neurobridge-risk/internal/platform/logger"
)

const interventionTemplatesEnv = "INTERVENTION_TEMPLATES_YAML"

//go:embed default_templates.yaml
var defaultTemplatesFS embed.FS

type templateFile struct {
	Templates []templateSpec `yaml:"templates" validate:"required,min=1,dive"`
}

type templateSpec struct {
	Name             string `yaml:"name" validate:"required,max=128"`
	InterventionType string `yaml:"intervention_type" validate:"required,oneof=nudge instructor_alert email in_app"`
	RiskLevelTrigger string `yaml:"risk_level_trigger" validate:"required,oneof=low moderate high critical"`
	RecipientType    string `yaml:"recipient_type" validate:"required,oneof=student instructor admin"`
	SubjectTemplate  string `yaml:"subject_template"`
	MessageTemplate  string `yaml:"message_template" validate:"required"`
	Inactive         bool   `yaml:"inactive"`
}

var templateValidator = validator.New()

func readTemplateFile() ([]byte, string, error) {
	if path := strings.TrimSpace(os.Getenv(interventionTemplatesEnv)); path != "" {
		b, err := os.ReadFile(path)
		return b, path, err
	}
	b, err := defaultTemplatesFS.ReadFile("default_templates.yaml")
	return b, "embedded", err
}

// ParseTemplates decodes and validates a template set. Names must be unique.
func ParseTemplates(raw []byte) ([]*types.InterventionTemplate, error) {
	var file templateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	if err := templateValidator.Struct(file); err != nil {
		return nil, fmt.Errorf("validate templates: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Templates))
	out := make([]*types.InterventionTemplate, 0, len(file.Templates))
	for _, t := range file.Templates {
		name := strings.TrimSpace(t.Name)
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("validate templates: duplicate name %q", name)
		}
		seen[name] = struct{}{}
		out = append(out, &types.InterventionTemplate{
			Name:             name,
			InterventionType: t.InterventionType,
			RiskLevelTrigger: t.RiskLevelTrigger,
			RecipientType:    t.RecipientType,
			SubjectTemplate:  t.SubjectTemplate,
			MessageTemplate:  t.MessageTemplate,
			IsActive:         !t.Inactive,
		})
	}
	return out, nil
}

// SeedTemplates inserts every configured template whose name is not yet stored and
// returns how many were created.
func SeedTemplates(ctx context.Context, log *logger.Logger, templates repos.InterventionTemplateRepo) (int, error) {
	raw, source, err := readTemplateFile()
	if err != nil {
		return 0, fmt.Errorf("read templates (%s): %w", source, err)
	}
	parsed, err := ParseTemplates(raw)
	if err != nil {
		return 0, fmt.Errorf("templates (%s): %w", source, err)
	}

	dbc := dbctx.Context{Ctx: ctx}
	names := make([]string, 0, len(parsed))
	for _, t := range parsed {
		names = append(names, t.Name)
	}
	existing, err := templates.GetByNames(dbc, names)
	if err != nil {
		return 0, fmt.Errorf("read existing templates: %w", err)
	}
	have := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		have[t.Name] = struct{}{}
	}

	created := 0
	for _, t := range parsed {
		if _, ok := have[t.Name]; ok {
			continue
		}
		if _, err := templates.Create(dbc, []*types.InterventionTemplate{t}); err != nil {
			if errors.Is(err, apperr.ErrAlreadyExists) {
				log.Info("intervention template already seeded", "template", t.Name)
				continue
			}
			return created, fmt.Errorf("seed template %s: %w", t.Name, err)
		}
		created++
	}
	log.Info("intervention templates seeded", "source", source, "created", created, "total", len(parsed))
	return created, nil
}
