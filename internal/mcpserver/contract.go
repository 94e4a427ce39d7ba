package mcpserver

// MoodGuide describes the mood labels and how journal tools treat them.
const MoodGuide = `# Solace Mood Labels

Solace accepts exactly five mood labels. Any other value is rejected.

| Label     | Use when the writer feels...            |
|-----------|-----------------------------------------|
| happy     | content, grateful, light                |
| neutral   | steady, unremarkable, even              |
| sad       | low, grieving, disappointed             |
| anxious   | worried, restless, under pressure       |
| angry     | frustrated, irritated, wronged          |

## Rules

1. Labels are lowercase. Input is trimmed and lowercased before matching.
2. ` + "`recommend_activity`" + ` takes one label and returns one short wellness activity.
3. ` + "`save_journal_entry`" + ` takes an optional label recorded with the entry.
4. Insight tools never fail on provider errors. When generation is unavailable
   they return a fixed supportive text instead.
5. Journal content must not be blank. Entries are summarized once and then
   never change.
6. ` + "`get_mood_trends`" + ` scores each mood from happy (5) down through neutral,
   anxious and sad to angry (1). Entries without a label are not scored.
`
