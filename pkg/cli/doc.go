/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the command-line interface of the gridfit tool.
//
// # Overview
//
// gridfit turns a raw BPASS photoionization archive into a canonical model
// grid and fits observed emission-line fluxes against it.
//
// # Commands
//
//	build      Integrate a raw HDF5 archive over age into a canonical grid file
//	inspect    Describe a canonical grid, optionally restricted with --fix
//	abundance  Print the solar composition used to scale metallicity
//	fit        Fit catalog targets through an external fitter
//
// # Global Flags
//
//	--log-level     debug, info, warn or error (env LOG_LEVEL)
//	--metrics-file  write Prometheus metrics to a text file on exit
//
// Commands that print results accept --output (file, default stdout) and
// --format (json, yaml, table).
//
// # Version Information
//
// Version, commit and build date are set at build time with ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/bpass-gridfit/pkg/cli.version=1.0.0'"
package cli
