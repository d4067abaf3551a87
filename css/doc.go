// Package css compiles nested style sheets into flat CSS.
//
// Input is a CSS superset: rules may nest, "&" refers to the parent selector,
// "//" starts a line comment and at-rules such as @media may appear inside a
// selector block. Compilation runs through a fixed pipeline: comments are
// stripped, text is tokenized, tokens are parsed into a nested tree, the tree
// is flattened into selector chains, chains are assembled into an output tree
// grouped by at-rule, optional merges and extensions are applied and the
// result is exported as pretty or minified text.
//
// Compilation is deterministic and keeps no state between calls.
package css
