package javalyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gradegrid/internal/checker"
	"github.com/vk/gradegrid/internal/config"
	"github.com/vk/gradegrid/internal/rules"
	"github.com/vk/gradegrid/internal/testutil"
)

func table(t *testing.T, name string, rows [][]string) *rules.Table {
	t.Helper()
	tbl, err := rules.FromRows(name, rows)
	require.NoError(t, err)
	return tbl
}

func TestOnRunJavalyzer(t *testing.T) {
	t.Parallel()
	root := testutil.WriteFiles(t, map[string]string{
		"src/Main.java": `import java.util.List;
import java.net.Socket;
public class Main {
    public static void main(String[] args) {}
}`,
		"README.md": "class Ignored {}",
	})

	check := &config.Check{
		Delegate: "javalyzer",
		Name:     "structure",
		Rules: map[string]*rules.Table{
			"import": table(t, "import", [][]string{
				{"accept", "java.util.*"},
				{"reject", "*", "import ${name} is not allowed"},
			}),
			"class": table(t, "class", [][]string{{"accept", "Main"}}),
		},
	}
	inv := checker.NewInvocation(check, []string{root})

	rep, err := OnRunJavalyzer(context.Background(), inv, &Input{})
	require.NoError(t, err)
	assert.False(t, rep.Passed())

	var names []string
	for _, r := range rep.Tests {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"import java.util.List", "import java.net.Socket", "class Main"}, names)
	assert.Equal(t, []string{"import java.net.Socket is not allowed"}, rep.Tests[1].Messages)
	assert.True(t, rep.Tests[2].Passed)

	rep, err = OnRunJavalyzer(context.Background(), inv, &Input{Categories: []string{"class"}})
	require.NoError(t, err)
	assert.True(t, rep.Passed())
	assert.Len(t, rep.Tests, 1)
}

func TestOnRunJavalyzer_Errors(t *testing.T) {
	t.Parallel()
	root := testutil.WriteFiles(t, map[string]string{"notes.txt": "x"})
	check := &config.Check{
		Delegate: "javalyzer",
		Name:     "structure",
		Rules:    map[string]*rules.Table{"method": table(t, "method", [][]string{{"accept", "*"}})},
	}
	inv := checker.NewInvocation(check, []string{root})

	_, err := OnRunJavalyzer(context.Background(), inv, &Input{Categories: []string{"field"}})
	require.ErrorContains(t, err, `unknown category "field"`)

	_, err = OnRunJavalyzer(context.Background(), inv, &Input{Categories: []string{"class"}})
	require.ErrorContains(t, err, "needs a rules block")

	rep, err := OnRunJavalyzer(context.Background(), inv, &Input{})
	require.NoError(t, err)
	assert.False(t, rep.Passed())
	assert.Equal(t, []string{"submission contains no .java files"}, rep.Tests[0].Messages)
}

func TestOnRunJavalyzer_InterfaceMethods(t *testing.T) {
	t.Parallel()
	root := testutil.WriteFiles(t, map[string]string{
		"Shape.java": `public interface Shape {
    double area();
    void paint();
}`,
		"Square.java": `public class Square implements Shape {
    public Square() {}
    public double area() { return 1; }
    public void paint() {}
}`,
	})
	check := &config.Check{
		Delegate: "javalyzer",
		Name:     "structure",
		Rules: map[string]*rules.Table{
			"method": table(t, "method", [][]string{
				{"reject", "paint", "${name} must not be declared"},
				{"accept", "*"},
			}),
		},
	}
	inv := checker.NewInvocation(check, []string{root})

	rep, err := OnRunJavalyzer(context.Background(), inv, &Input{})
	require.NoError(t, err)
	assert.False(t, rep.Passed())

	var failed []string
	for _, r := range rep.Tests {
		assert.NotEqual(t, "method Square", r.Name, "constructors are not methods")
		if !r.Passed {
			failed = append(failed, r.Name)
		}
	}
	assert.Contains(t, failed, "method paint")
}
