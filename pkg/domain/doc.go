/*
Package domain contains the content models exchanged with the remote graph store.

It defines the entity records, the typed views decoded from them, the edges
that connect them and the error taxonomy shared by every component. The package
performs no I/O.

# Key Entities

  - Record: the schema-less attribute map the store speaks.
  - Content, Author, Category, Media: editorial entities.
  - ContentBlock, ContentRevision: the flat block list of a content item and its snapshots.
  - WorkflowState: a node of the editorial state machine.
  - Page, PageSection, Layout, LayoutPlacement, Block: site structure.
  - Relationship: a typed, directed edge with its own properties.
*/
package domain
