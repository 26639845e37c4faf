/*
Package ports defines the driven ports (interfaces) of the content domain layer.

These interfaces decouple the domain components from the remote store and from
coordination backends, so the same client runs against HTTP, an in-process fake
or a test double.

# Key Interfaces

  - Transport: sends one request to the remote graph store and normalises failures into *domain.RemoteError.
  - Locker: serialises multi-step mutations (block saves, revision restores) per content item.
*/
package ports
