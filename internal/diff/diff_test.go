package diff

import (
	"testing"
)

const sampleDiff = `diff --git a/src/auth.ts b/src/auth.ts
index 1111111..2222222 100644
--- a/src/auth.ts
+++ b/src/auth.ts
@@ -10,4 +10,5 @@ export class AuthService {
 	login(user: string) {
-		return this.tokens.get(user);
+		const token = this.tokens.get(user);
+		return token ?? null;
 	}
 }
diff --git a/src/util.ts b/src/util.ts
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/src/util.ts
@@ -0,0 +1,3 @@
+export function clamp(n: number, lo: number, hi: number) {
+	return Math.min(hi, Math.max(lo, n));
+}
diff --git a/docs/old.md b/docs/old.md
deleted file mode 100644
index 4444444..0000000
--- a/docs/old.md
+++ /dev/null
@@ -1,2 +0,0 @@
-# Old
-Stale notes.
`

func TestParse(t *testing.T) {
	files, err := ParseString(sampleDiff)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}

	modified := files[0]
	if modified.Path != "src/auth.ts" || modified.Status != StatusModified {
		t.Errorf("unexpected first file: %+v", modified)
	}
	if modified.Additions != 2 || modified.Deletions != 1 {
		t.Errorf("expected 2 additions and 1 deletion, got +%d -%d", modified.Additions, modified.Deletions)
	}
	if len(modified.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(modified.Chunks))
	}
	if modified.Chunks[0].NewStart != 10 {
		t.Errorf("expected chunk new start 10, got %d", modified.Chunks[0].NewStart)
	}

	added := files[1]
	if added.Path != "src/util.ts" || added.Status != StatusAdded {
		t.Errorf("unexpected second file: %+v", added)
	}
	if added.Additions != 3 || added.Deletions != 0 {
		t.Errorf("expected 3 additions, got +%d -%d", added.Additions, added.Deletions)
	}

	deleted := files[2]
	if deleted.Path != "docs/old.md" || deleted.Status != StatusDeleted {
		t.Errorf("unexpected third file: %+v", deleted)
	}
	if deleted.Deletions != 2 {
		t.Errorf("expected 2 deletions, got %d", deleted.Deletions)
	}
}

func TestParse_Empty(t *testing.T) {
	files, err := ParseString("")
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}
}

func TestFile_ChangedLines(t *testing.T) {
	files, err := ParseString(sampleDiff)
	if err != nil {
		t.Fatal(err)
	}

	changed := files[0].ChangedLines()
	if len(changed) != 3 {
		t.Fatalf("expected 3 changed lines, got %d", len(changed))
	}
	for _, line := range changed {
		if line.Op == OpContext {
			t.Errorf("context line leaked into ChangedLines: %q", line.Content)
		}
	}

	removed := files[0].RemovedContent()
	if removed != "\t\treturn this.tokens.get(user);\n" {
		t.Errorf("unexpected removed content: %q", removed)
	}
}

func TestTotals(t *testing.T) {
	files, err := ParseString(sampleDiff)
	if err != nil {
		t.Fatal(err)
	}
	added, removed := Totals(files)
	if added != 5 || removed != 3 {
		t.Errorf("Totals() = +%d -%d, want +5 -3", added, removed)
	}
}
