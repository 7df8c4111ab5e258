// Package themes selects go-theme manifests from the themes directory and
// renders pages through the selected theme's layout templates.
package themes
