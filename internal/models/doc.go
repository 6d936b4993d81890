// Package models lists the models available to the configured backend's API
// key, so a usable --gemini-model or --deepseek-model value can be picked.
package models
