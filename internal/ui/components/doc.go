// Package components holds the server-rendered views of the pdmwatch UI.
//
// Every view is a templ.Component written against templ.ComponentFunc, so
// pages compose the same way generated templ code does and handlers can
// render them directly or patch them over datastar SSE.
package components
