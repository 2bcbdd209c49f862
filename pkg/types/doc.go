// Package types provides shared type definitions for CodeQuarry.
//
// This package defines the domain types used across the indexing and
// retrieval pipeline: documents, chunks, extracted facts (symbols,
// endpoints, edges, findings), transient retrieval results, and
// grounded answers with citations.
//
// # Core Types
//
// Document identifies an indexed file by (repo, revision, path):
//
//	doc := &types.Document{
//	    Repo:     "acme/payments",
//	    Revision: "3f2c1ab",
//	    Path:     "src/users/users.controller.ts",
//	    Language: "typescript",
//	}
//
// Chunk represents one addressable unit of a document's text:
//
//	chunk := types.Chunk{
//	    Ordinal:   0,
//	    Text:      sectionBody,
//	    Kind:      types.ChunkSection,
//	    Title:     "Getting Started",
//	    StartLine: 1,
//	    EndLine:   42,
//	}
//
// # Retrieval
//
// Retrieved is a transient, query-time projection. It is never
// persisted; every Retrieved item traces back to a stored chunk or
// fact row. Its Permalink method renders the citation link format:
//
//	host/repo/blob/revision/path#Lstart-Lend
//
// # Validation
//
// Domain types implement Validate methods to ensure integrity before
// they reach storage:
//
//	if err := chunk.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package types
