// Package template compiles block widget markup written in a small
// Handlebars dialect.
//
// Sources are rewritten into html/template syntax action by action and
// then parsed, so every interpolated value is escaped for its context.
// An unsafe URL in an attribute renders as "#ZgotmplZ".
//
//	{{name}}                              variable
//	{{#if image}}...{{else}}...{{/if}}    conditional
//	{{#unless products}}...{{/unless}}    negated conditional
//	{{#each products}}{{sku}}{{/each}}    loop; bare names read the element
//	{{truncate caption 80}}               function call
//
// Actions already in html/template form, such as {{.name}} or
// {{range .items}}, pass through unchanged.
//
// Functions: truncate (runes), words, upper, lower, trim, join, default
// and count. Engine.AddFunc adds more.
package template
