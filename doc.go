/*
Package fmp decodes FileMaker Pro database files (fp3, fp5, fp7,
fmp12) into tables, columns, and row values.

Pipeline

A file is a sequence of fixed-size sectors; the first 1024 bytes of
sector 0 hold the header. Pre-v7 files reserve sector 1 as a throwaway
sector, so block 1 is sector 2; in v7+ files block 1 is sector 1 (the
layout below is the pre-v7 one). Sectors chain into blocks via next_id
pointers; each block's
payload is a linked chain of chunks built from a path-push/path-pop
structure that, together, identify which table/column/row a chunk's
bytes belong to.

    File layout:
    +--------+-----------+---------+---------+---------+
    | header | throwaway | block 1 |   ...   | block n |
    +--------+-----------+---------+---------+---------+

    Block (one sector):
    +-------------------+------------------------------+
    | prev/next/flags    | payload (XOR-masked, chunks) |
    +-------------------+------------------------------+

    Chunk chain within a payload:
    +------------+-----  ...  -----+------------------+
    | PATH_PUSH  |  FIELD_REF /    | end-of-payload   |
    | PATH_POP   |  DATA_SEGMENT   |                  |
    +------------+-----  ...  -----+------------------+

Open selects one of two interchangeable sector sources depending on
file size: an eager in-memory stream source for files under 100MiB, or
a read-only memory-mapped source above that, backed by a bounded
hot-block cache. Both yield identical decoded output for the same
input (see traverse.go, sector.go, sector_mmap.go).

A single traversal (traverse.go) walks the block chain from block 1,
feeding each block's chunk chain through a path-aware dispatcher to one
of two consumers: the metadata extractor (metadata.go), which recovers
table and column names, or the row assembler (rows.go), which
reconstructs rows and reassembles long strings split across chunks.

Downstream consumption (schema creation, value storage) is modeled as
the sink.Handler interface in the sink subpackage; this package knows
nothing about SQL or any other storage target.
*/
package fmp
