package mcpserver

// LayoutContract describes the on-disk vocabulary layout for LLM consumers.
const LayoutContract = `# Lexicon Vocabulary Layout

A vocabulary is a tree of named terms rooted at one directory (by default ` + "`terms/`" + `).

## Entries

- **Leaf term**: a file ` + "`<name>.txt`" + ` whose content is the description
  followed by exactly one newline.
- **Parent term**: a directory ` + "`<name>/`" + ` holding ` + "`_index`" + ` (the
  parent's own description) plus one entry per child term.

## Rules

1. Lookup is by exact, case-sensitive name anywhere in the tree.
2. ` + "`_index`" + ` is reserved and can never be a term name.
3. Names must not contain path separators and cannot be ` + "`.`" + ` or ` + "`..`" + `.
4. Adding the first child to a leaf promotes it: the directory is created, then
   ` + "`<name>.txt`" + ` moves to ` + "`<name>/_index`" + ` byte for byte.
5. A name already used at the same position, as a leaf file or as a parent
   directory, cannot be added again.
6. Terms are never renamed or deleted.

## Example

` + "```" + `
terms/
  fruit/
    _index        a sweet food
    apple.txt     a red fruit
  vegetable.txt   a savoury food
` + "```" + `
`
