// Package scaffold expands template directories into new project trees.
//
// A template directory holds a template.yaml manifest and a skeleton/
// directory. Path segments and .tmpl files inside the skeleton are rendered
// with text/template against a flat string context; every other file is
// copied verbatim. Remote templates are shallow-cloned first and then
// expanded the same way.
package scaffold
