package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/config"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/registry"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSchema_Text(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintSchema(registry.Default(), domain.EntityAuthor, &out, false))

	text := out.String()
	assert.Contains(t, text, "Author\n")
	assert.Regexp(t, `(?m)^  email\s+string$`, text)
	assert.NotContains(t, text, "Content")
}

func TestPrintSchema_JSONDecodesBack(t *testing.T) {
	cfg := config.Default()
	cfg.ExtraFields = map[string]map[string]string{domain.EntityAuthor: {"pronouns": "string?"}}
	reg, err := BuildRegistry(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, PrintSchema(reg, domain.EntityAuthor, &out, true))

	var decoded map[string]schema.Schema
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	def, err := reg.Entity(domain.EntityAuthor)
	require.NoError(t, err)
	assert.Equal(t, def.Fields.Describe(), decoded[domain.EntityAuthor].Describe())
	assert.Equal(t, "string?", decoded[domain.EntityAuthor].Describe()["pronouns"])
}

func TestPrintSchema_UnknownEntity(t *testing.T) {
	err := PrintSchema(registry.Default(), "Nope", &bytes.Buffer{}, false)
	assert.ErrorIs(t, err, registry.ErrUnknownEntity)
}

func TestBuildRegistry_RejectsUnknownEntity(t *testing.T) {
	cfg := config.Default()
	cfg.ExtraFields = map[string]map[string]string{"Gadget": {"size": "int"}}
	_, err := BuildRegistry(cfg)
	assert.ErrorIs(t, err, registry.ErrUnknownEntity)
}
