/*
Package ports defines the driven ports (interfaces) of the lazychess engine session.

These interfaces decouple the session logic from the operating system, allowing
the session to drive a real engine subprocess or an in-memory scripted fake.

# Key Interfaces

  - EngineProcess: A line-oriented, bidirectional channel to a UCI engine (e.g., a Stockfish subprocess).
*/
package ports
