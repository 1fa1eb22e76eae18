/*
Package storage persists a single typed value to a file and survives bad
on-disk state by falling back to a default value.

# Overview

A Store[T] owns one file. Load decodes the file into a fresh T; on any
failure (missing file, truncated or corrupt envelope, checksum mismatch,
kind or version mismatch, codec error) it logs the failure and returns a
newly constructed default. Save encodes the value and replaces the file
through a temporary file and rename, so a crash mid-write leaves either the
old or the new content.

# Strict mode

In lenient mode (the default) neither Load nor Save ever returns an error.
Options.Strict makes both return the underlying error after logging it;
Load still returns the default value alongside the error so callers can
continue. A missing file is a normal first start and is never an error.

# File format

	+------+---------+-------+-------+---------+------+-------------+---------+----------+
	| WXST | version | flags | codec | kindLen | kind | payloadLen  | payload | sha256   |
	| 4B   | uint16  | uint8 | uint8 | uint16  |      | uint32      |         | 32B      |
	+------+---------+-------+-------+---------+------+-------------+---------+----------+

Integers are big-endian. Flag bit 0 marks a zstd-compressed payload. The
codec byte selects JSON (sonic), YAML (goccy/go-yaml) or TOML
(pelletier/go-toml/v2). The checksum covers the stored payload bytes.

# Usage

	store := storage.New(path, DefaultSettings, storage.Options{
		Logger: logger,
	})
	settings, _ := store.Load()
	...
	_ = store.Save(settings)

Store is not safe for concurrent use; a stored value has a single owner.
*/
package storage
