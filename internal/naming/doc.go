// Package naming provides placeholder template resolution, output path
// construction, and in-batch collision resolution.
//
// Types:
//   - Context (placeholder name → value map for one file)
//   - CollisionResolver (owner map + counter for duplicate targets)
//
// Functions:
//   - Resolve(template, ctx) → string
//     Lenient single-pass placeholder expansion: {stem}, {ext}, {index},
//     plus any metadata key present in the context. Unknown placeholders
//     are left verbatim; templates are user-authored and partial metadata
//     is common.
//   - NewContext(srcPath, ext, index) → Context
//     Base placeholders for one source file.
//   - OutputPath(srcPath, settings, index) → string
//     Filename template resolved into the output directory.
//   - SameFile(src, dst) → bool
//     Source/destination identity check backing the overwrite-source guard.
package naming
