// Package siterag provides a site-scoped retrieval-augmented generation
// pipeline. It crawls a website breadth-first, saves the main text of each
// page, splits the text into overlapping chunks stored as vectors, and
// answers questions from the chunks most similar to the question.
//
// This package contains domain types, interfaces and the pure algorithms
// (URL normalization, chunking, cosine similarity) following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, gemini/).
package siterag
