package registry

import (
	"fmt"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/schema"
)

// entity builds a definition whose fields include the store-assigned ones.
func entity(name string, fields schema.Schema, rules ...Rule) *EntityDef {
	return &EntityDef{
		Name: name,
		Fields: schema.Schema{
			domain.FieldID:        schema.String(),
			domain.FieldCreatedAt: schema.Time(),
			domain.FieldUpdatedAt: schema.Time(),
		}.Extend(fields),
		Rules: rules,
	}
}

var systemFlag = schema.Schema{domain.FieldIsSystem: schema.Optional(schema.Bool())}

// DefaultEntities returns the entity catalog of the content domain.
func DefaultEntities() []*EntityDef {
	optString := schema.Optional(schema.String())
	optMap := schema.Optional(schema.Map())

	return []*EntityDef{
		entity(domain.EntityContent, schema.Schema{
			"title":       schema.String(),
			"slug":        schema.String(),
			"contentType": schema.Enum(string(domain.ContentArticle), string(domain.ContentPage), string(domain.ContentSnippet)),
			"excerpt":     optString,
			"publishedAt": schema.Optional(schema.Nullable(schema.Time())),
			"metadata":    optMap,
		}.Extend(systemFlag)),
		entity(domain.EntityAuthor, schema.Schema{
			"name":      schema.String(),
			"email":     schema.String(),
			"bio":       optString,
			"avatarUrl": optString,
		}.Extend(systemFlag)),
		entity(domain.EntityCategory, schema.Schema{
			"name":        schema.String(),
			"slug":        schema.String(),
			"description": optString,
		}.Extend(systemFlag)),
		entity(domain.EntityMedia, schema.Schema{
			"filename": schema.String(),
			"url":      schema.String(),
			"mimeType": schema.String(),
			"size":     schema.NonNegativeInt(),
			"altText":  optString,
			"metadata": optMap,
		}.Extend(systemFlag)),
		entity(domain.EntityContentBlock, schema.Schema{
			"blockType": schema.Enum(blockTypeNames()...),
			"content":   schema.Map(),
			"position":  schema.NonNegativeInt(),
			"metadata":  optMap,
		}, blockContentRule),
		entity(domain.EntityContentRevision, schema.Schema{
			"revisionNumber": schema.IntRange(1, int64(^uint64(0)>>1)),
			"title":          schema.String(),
			"blocks":         schema.Custom("snapshot", validateSnapshot),
			"changeMessage":  optString,
			"isCurrent":      schema.Bool(),
			"createdBy":      optString,
		}),
		entity(domain.EntityWorkflowState, schema.Schema{
			"name":               schema.String(),
			"slug":               schema.String(),
			"color":              schema.String(),
			"position":           schema.Int(),
			"allowedTransitions": schema.Slice(schema.String()),
		}.Extend(systemFlag)),
		entity(domain.EntityLayout, schema.Schema{
			"name":    schema.String(),
			"slug":    schema.String(),
			"regions": schema.Slice(schema.String()),
		}.Extend(systemFlag)),
		entity(domain.EntityLayoutPlacement, schema.Schema{
			"region":   schema.String(),
			"position": schema.NonNegativeInt(),
			"settings": optMap,
		}),
		entity(domain.EntityBlock, schema.Schema{
			"name":      schema.String(),
			"slug":      schema.String(),
			"blockType": optString,
			"content":   schema.Map(),
		}.Extend(systemFlag)),
		entity(domain.EntityPage, schema.Schema{
			"title":    schema.String(),
			"slug":     schema.String(),
			"path":     optString,
			"isHome":   schema.Optional(schema.Bool()),
			"metadata": optMap,
		}.Extend(systemFlag)),
		entity(domain.EntityPageSection, schema.Schema{
			"sectionType": schema.Enum(
				string(domain.SectionContentList),
				string(domain.SectionSingleContent),
				string(domain.SectionStaticBlock),
				string(domain.SectionGlobalBlock),
			),
			"position": schema.NonNegativeInt(),
			"title":    optString,
			"config":   optMap,
		}, sectionConfigRule),
	}
}

// DefaultRelationships returns the edge catalog of the content domain.
func DefaultRelationships() []*RelationshipDef {
	optInt := schema.Optional(schema.Int())
	optBool := schema.Optional(schema.Bool())

	return []*RelationshipDef{
		{Name: domain.RelAuthoredBy, Source: domain.EntityContent, Target: domain.EntityAuthor, Properties: schema.Schema{
			"role": schema.Enum(string(domain.RolePrimary), string(domain.RoleContributor), string(domain.RoleEditor)),
		}},
		{Name: domain.RelHasMedia, Source: domain.EntityContent, Target: domain.EntityMedia, Properties: schema.Schema{
			"position":   optInt,
			"caption":    schema.Optional(schema.String()),
			"isFeatured": optBool,
		}},
		{Name: domain.RelHasState, Source: domain.EntityContent, Target: domain.EntityWorkflowState, Properties: schema.Schema{
			"assignedAt": schema.Time(),
			"assignedBy": schema.Optional(schema.String()),
		}},
		{Name: domain.RelCategorizedAs, Source: domain.EntityContent, Target: domain.EntityCategory, Properties: schema.Schema{
			"featured": optBool,
			"position": optInt,
		}},
		{Name: domain.RelCategoryParent, Source: domain.EntityCategory, Target: domain.EntityCategory},
		{Name: domain.RelHasBlock, Source: domain.EntityContent, Target: domain.EntityContentBlock, Properties: schema.Schema{
			"position": schema.NonNegativeInt(),
		}},
		{Name: domain.RelHasRevision, Source: domain.EntityContent, Target: domain.EntityContentRevision},
		{Name: domain.RelPageParent, Source: domain.EntityPage, Target: domain.EntityPage, Properties: schema.Schema{
			"position": optInt,
		}},
		{Name: domain.RelPageHasSection, Source: domain.EntityPage, Target: domain.EntityPageSection},
		{Name: domain.RelUsesLayout, Source: domain.EntityPage, Target: domain.EntityLayout},
		{Name: domain.RelHasPlacement, Source: domain.EntityPage, Target: domain.EntityLayoutPlacement},
		{Name: domain.RelPlacesBlock, Source: domain.EntityLayoutPlacement, Target: domain.EntityBlock},
	}
}

// Default returns a registry loaded with the content domain catalog.
func Default() *Registry {
	return New().MustRegister(DefaultEntities(), DefaultRelationships())
}

var snapshotEntry = schema.Schema{
	"type":     schema.Enum(blockTypeNames()...),
	"content":  schema.Map(),
	"metadata": schema.Optional(schema.Map()),
}

func validateSnapshot(v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("expected snapshot object, got %T", v)
	}
	for key, raw := range m {
		entry, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("position %s: expected object, got %T", key, raw)
		}
		if err := schema.Validate(snapshotEntry, entry); err != nil {
			return fmt.Errorf("position %s: %w", key, err)
		}
	}
	return nil
}

func sectionConfigRule(rec domain.Record) error {
	config, _ := rec["config"].(map[string]any)
	require := func(key string) error {
		if s, _ := config[key].(string); s == "" {
			return &schema.ValidationError{
				Key:    "config." + key,
				Reason: fmt.Sprintf("required for %s sections", rec["sectionType"]),
			}
		}
		return nil
	}

	switch domain.SectionType(rec.String("sectionType")) {
	case domain.SectionSingleContent:
		return require("contentId")
	case domain.SectionStaticBlock:
		return require("markup")
	case domain.SectionGlobalBlock:
		return require("blockId")
	case domain.SectionContentList:
		if limit, ok := config["limit"]; ok {
			if err := schema.NonNegativeInt().Validate(limit); err != nil {
				return &schema.ValidationError{Key: "config.limit", Reason: err.Error(), Value: limit}
			}
		}
	}
	return nil
}
