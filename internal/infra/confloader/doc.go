// Package confloader loads turbine configuration from layered sources.
//
// It uses koanf underneath. Sources, highest priority first:
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (TURBINE_SECTION_KEY)
//  3. The YAML configuration file (turbine.yaml)
//  4. Defaults already present in the target struct
//
// @design DS-0502
package confloader
