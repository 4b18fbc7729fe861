package help

const ColdstartYAML = `# llm-log-parser Quick Start

layout:
  root: "one directory per submission (folder name = submitter id)"
  files: "*.json log envelopes with raw_messages[].raw_content"
  payload: "JSON embedded between content=' and ' node_title, escapes repaired"

modes:
  aggregate: "Match every submission against a baseline folder, per-item mistake rates"
  group: "Fuzzy-cluster all items without a baseline"
  scan: "Flat listing of every item, per-folder accuracy"
  extract: "Flatten single log files to markdown (optionally PNG)"

commands:
  aggregate: |
    llp aggregate --baseline reference ./logs

  aggregate_exact: |
    llp aggregate --baseline reference --exact ./logs

  group: |
    llp group ./logs

  scan: |
    llp scan ./logs/student-01

  extract: |
    llp extract ./logs/student-01/run.json
    llp extract --png --font /usr/share/fonts/NotoSansCJK.ttf ./logs/student-01/run.json

  runs: |
    llp runs list
    llp runs show               # latest run
    llp runs show 2025-03-01T09 # unique id prefix
    llp runs get --file=manifest

  config: |
    llp config init llp.yaml
    llp --config llp.yaml aggregate --baseline reference ./logs

key_files:
  - "llp-reports/index.yaml (all runs, newest first)"
  - "llp-reports/runs/{YYYY-MM-DDTHH-MM-SS}-{hash}/manifest.yaml (run overview)"
  - "llp-reports/runs/{run}/1_student_mistakes.json (item -> submitter -> mistake)"
  - "llp-reports/runs/{run}/2_statistics_summary.json (item -> counts and rate)"

guarantees:
  - "The baseline folder counts as a submission"
  - "mistake_rate = submitters with a mistake on the item / submissions seen"
  - "Unreadable files are skipped and listed in manifest.yaml, the run continues"
  - "Items that match no baseline item are logged and counted as unmatched"
`
