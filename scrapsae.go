// Package scrapsae provides an autonomous product-extraction engine.
// Given a site profile it recursively discovers and extracts structured
// product records from category hierarchies, adapts its own selector
// configuration when extraction starts failing, and exposes per-site
// run control (pause/resume/stop) to callers.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, gemini/).
package scrapsae
