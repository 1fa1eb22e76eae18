// Package suggest fetches query completions from remote suggestion
// services. Providers are looked up by name through a Registry; the
// default registry knows "google" and "baidu".
package suggest
