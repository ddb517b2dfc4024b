/*
Package domain contains the core types shared by every layer of lazychess.

It defines the vocabulary of the UCI conversation with an engine and of the
analysis kept from it. The package is pure: no I/O, no goroutines, no
dependencies beyond the standard library.

# Key Entities

  - Command: an outbound UCI instruction (Position, Go, Stop, SetOption, ...).
  - Message: one decoded engine output line (SearchInfo, BestMove, ReadyOk, ...).
  - Score: a side-to-move relative evaluation in centipawns or mate distance.
  - AnalysisLine / Snapshot: the latest evaluation per MultiPV slot, and a copy of all of them.
  - SessionState: the lifecycle of an engine session (Idle, Analyzing, Stopping, Terminated).
*/
package domain
