package domain

import "time"

// Base carries the store-assigned fields of every entity.
type Base struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContentType classifies a Content item.
type ContentType string

const (
	ContentArticle ContentType = "ARTICLE"
	ContentPage    ContentType = "PAGE"
	ContentSnippet ContentType = "SNIPPET"
)

type Content struct {
	Base
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	ContentType ContentType    `json:"contentType"`
	Excerpt     string         `json:"excerpt,omitempty"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IsSystem    bool           `json:"isSystem,omitempty"`
}

type Author struct {
	Base
	Name      string `json:"name"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	IsSystem  bool   `json:"isSystem,omitempty"`
}

type Category struct {
	Base
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	IsSystem    bool   `json:"isSystem,omitempty"`
}

type Media struct {
	Base
	Filename string         `json:"filename"`
	URL      string         `json:"url"`
	MimeType string         `json:"mimeType"`
	Size     int64          `json:"size"`
	AltText  string         `json:"altText,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	IsSystem bool           `json:"isSystem,omitempty"`
}

// Layout names the regions a page can place global blocks into.
type Layout struct {
	Base
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Regions  []string `json:"regions"`
	IsSystem bool     `json:"isSystem,omitempty"`
}

// LayoutPlacement puts a global Block into a layout region of a Page.
type LayoutPlacement struct {
	Base
	Region   string         `json:"region"`
	Position int            `json:"position"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Block is a reusable global block, shared between pages.
type Block struct {
	Base
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	BlockType string         `json:"blockType,omitempty"`
	Content   map[string]any `json:"content"`
	IsSystem  bool           `json:"isSystem,omitempty"`
}

type Page struct {
	Base
	Title    string         `json:"title"`
	Slug     string         `json:"slug"`
	Path     string         `json:"path,omitempty"`
	IsHome   bool           `json:"isHome,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	IsSystem bool           `json:"isSystem,omitempty"`
}

// SectionType selects what a PageSection renders.
type SectionType string

const (
	SectionContentList   SectionType = "CONTENT_LIST"
	SectionSingleContent SectionType = "SINGLE_CONTENT"
	SectionStaticBlock   SectionType = "STATIC_BLOCK"
	SectionGlobalBlock   SectionType = "GLOBAL_BLOCK"
)

// PageSection is one ordered section of a Page. Config holds the companion
// data its SectionType requires.
type PageSection struct {
	Base
	SectionType SectionType    `json:"sectionType"`
	Position    int            `json:"position"`
	Title       string         `json:"title,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}
