package service

// dryRunMarkdown is the canned payload returned for dry_run requests so the
// UI can exercise its markdown rendering without a backend.
const dryRunMarkdown = `## The Case for Doing the Simple Thing First

The speaker argues that most engineering effort is spent on problems teams
invented for themselves, and that shipping the simplest working version
creates the feedback that makes the second version worth building.

### The Core Claim

The speaker frames complexity as a loan taken against future understanding.

* **Premature abstraction** locks in guesses before any user has voted.
* **Working software** is described as the only reliable requirements document.
* The speaker repeats the phrase "you are not your roadmap" twice.

### Critique of Big Upfront Design

The speaker contrasts two teams: one spends a quarter on architecture
diagrams, the other ships in two weeks and rewrites twice.

1. Both teams rewrite the system.
2. Only one of them learned anything before doing so.

### Actionable Steps

* Ship the smallest version that a real user can touch.
* Delete any abstraction with fewer than two concrete users.
* Schedule the rewrite instead of pretending it will not happen.

> "The first version is a question, not an answer."

Not mentioned: team size, tooling, or how to sell this to management.`
