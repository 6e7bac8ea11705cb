package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northernsines/foobar/lexer"
	"github.com/northernsines/foobar/parser"
	"github.com/northernsines/foobar/resolver"
	"github.com/northernsines/foobar/semantics"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.New(src).Tokenize()
	require.NoError(t, err)
	prog, err := parser.Parse("main.foob", toks)
	require.NoError(t, err)
	analyzed, err := semantics.Analyze(&resolver.Unit{Files: []string{"main.foob"}, Program: prog})
	require.NoError(t, err)
	out, err := Generate(analyzed)
	require.NoError(t, err)
	return out
}

func TestDeterministicOutput(t *testing.T) {
	src := `
		enumerated COLOR { RED, GREEN, BLUE };
		class SHAPE {
			public float area;
			public string Describe() { return "shape " + area.toString(); }
		}
		class CIRCLE inherits SHAPE {
			public float r;
			public Initialize(float radius) { r = radius; area = 3.14 * r * r; }
			public string Describe() { return "circle " + parent.Describe(); }
		}
		Main() {
			integer[] xs = [3, 1, 2];
			integer[] sorted = xs.sort();
			integer total = xs.reduce((acc, x) -> acc + x, 0);
			CIRCLE c = new CIRCLE(2.0);
			CONSOLE.Print(c.Describe());
			return (total == 6) & (sorted[0] == 1);
		}
	`
	first := generate(t, src)
	second := generate(t, src)
	assert.Equal(t, first, second)
}

func TestMainWrapper(t *testing.T) {
	out := generate(t, `Main() { return true; }`)
	assert.Contains(t, out, "bool Main_internal(void) {\n\treturn true;\n}")
	assert.Contains(t, out, "int main(void) {\n\treturn Main_internal() ? 0 : 1;\n}")
}

func TestSliceAndIndexLowering(t *testing.T) {
	out := generate(t, `
		Main() {
			integer[] arr = [0, 1, 2, 3, 4, 5, 6, 7, 8, 9];
			integer[] a = arr[2., 6];
			integer[] b = arr[2,, 6];
			integer[] c = arr[2.. 6];
			integer last = arr[-1];
			return last == 9;
		}
	`)
	assert.Contains(t, out, "Array_integer_lit(10, (int[]){0, 1, 2, 3, 4, 5, 6, 7, 8, 9})")
	assert.Contains(t, out, "Array_integer_slice(arr, 2, 6, 0, 0)")
	assert.Contains(t, out, "Array_integer_slice(arr, 2, 6, 1, 0)")
	assert.Contains(t, out, "Array_integer_slice(arr, 2, 6, 0, 1)")
	assert.Contains(t, out, "Array_integer_get(arr, -1)")
}

func TestOpenEndedSlices(t *testing.T) {
	out := generate(t, `
		Main() {
			integer[] arr = [1, 2, 3];
			integer[] head = arr[., 2];
			integer[] tail = arr[1..];
			return true;
		}
	`)
	assert.Contains(t, out, "Array_integer_slice(arr, 0, 2, 0, 0)")
	assert.Contains(t, out, "Array_integer_slice(arr, 1, INT_MAX, 0, 0)")
}

func TestZeroValueConstructor(t *testing.T) {
	out := generate(t, `
		enumerated COLOR { RED, GREEN };
		class BAG {
			integer n;
			float f;
			boolean ok;
			string s;
			character c;
			integer[] xs;
			COLOR tint;
			BAG next;
		}
		Main() {
			BAG b = new BAG();
			return true;
		}
	`)
	assert.Contains(t, out, "BAG* BAG_new(void) {")
	assert.Contains(t, out, "self->n = 0;")
	assert.Contains(t, out, "self->f = 0.0f;")
	assert.Contains(t, out, "self->ok = false;")
	assert.Contains(t, out, `self->s = String_new("", 0);`)
	assert.Contains(t, out, `self->c = '\0';`)
	assert.Contains(t, out, "self->xs = Array_integer_make(0);")
	assert.Contains(t, out, "self->tint = COLOR_RED;")
	assert.Contains(t, out, "self->next = NULL;")
}

func TestFirstParentWinsDispatch(t *testing.T) {
	out := generate(t, `
		class A { public integer Tag() { return 1; } }
		class B { public integer Tag() { return 2; } }
		class D inherits A, B { }
		Main() {
			D d = new D();
			return d.Tag() == 1;
		}
	`)
	assert.Contains(t, out, "int D_Tag(D* self) {\n\treturn 1;\n}")
	assert.Contains(t, out, "int B_Tag(B* self) {\n\treturn 2;\n}")
	assert.Contains(t, out, "return D_Tag(d) == 1;")
}

func TestMethodsRegenerateAgainstEachClass(t *testing.T) {
	out := generate(t, `
		class A {
			public integer v = 3;
			public integer Get() { return v; }
		}
		class B inherits A { }
		Main() {
			B b = new B();
			return b.Get() == 3;
		}
	`)
	assert.Contains(t, out, "int A_Get(A* self) {\n\treturn self->v;\n}")
	assert.Contains(t, out, "int B_Get(B* self) {\n\treturn self->v;\n}")
	assert.Contains(t, out, "B_Get(b)")
}

func TestParentCallSpecialization(t *testing.T) {
	out := generate(t, `
		class BASE { public integer M() { return 7; } }
		class MID inherits BASE {
			public integer M() { return 10; }
			public integer Via() { return parent.M(); }
		}
		class LEAF inherits MID { }
		Main() {
			LEAF l = new LEAF();
			return l.Via() == 7;
		}
	`)
	assert.Contains(t, out, "int MID__BASE_M(MID* self) {\n\treturn 7;\n}")
	assert.Contains(t, out, "int LEAF__BASE_M(LEAF* self) {\n\treturn 7;\n}")
	assert.Contains(t, out, "int MID_Via(MID* self) {\n\treturn MID__BASE_M(self);\n}")
	assert.Contains(t, out, "int LEAF_Via(LEAF* self) {\n\treturn LEAF__BASE_M(self);\n}")
}

func TestConstructorIsInherited(t *testing.T) {
	out := generate(t, `
		class A {
			public integer n;
			public Initialize(integer start) { n = start; }
		}
		class B inherits A { }
		Main() {
			B b = new B(5);
			return true;
		}
	`)
	assert.Contains(t, out, "B* B_new(int start) {")
	assert.Contains(t, out, "B_Initialize(self, start);")
	assert.Contains(t, out, "void B_Initialize(B* self, int start) {\n\tself->n = start;\n}")
	assert.Contains(t, out, "B_new(5)")
}

func TestFlattenedStructLayout(t *testing.T) {
	out := generate(t, `
		class A { public integer a1; public integer a2; }
		class B { public integer b1; }
		class D inherits A, B { public integer d1; }
		Main() {
			D d = new D();
			return true;
		}
	`)
	assert.Contains(t, out, "struct D {\n\tint a1;\n\tint a2;\n\tint b1;\n\tint d1;\n};")
}

func TestWideningCastsAlongFirstParentChain(t *testing.T) {
	out := generate(t, `
		class A { public integer a; }
		class B { public integer b; }
		class D inherits A, B { }
		Main() {
			D d = new D();
			A first = d;
			boolean second = d isa B;
			return second;
		}
	`)
	assert.Contains(t, out, "A* first = ((A*)d);")
	assert.Contains(t, out, "bool second = true;")
}

func TestIsaFoldsToConstants(t *testing.T) {
	out := generate(t, `
		class A { }
		class B inherits A { }
		class OTHER { }
		Main() {
			B b = new B();
			boolean direct = b isa B;
			boolean trans = b isa A;
			boolean no = b isa OTHER;
			return direct;
		}
	`)
	assert.Contains(t, out, "bool direct = true;")
	assert.Contains(t, out, "bool trans = true;")
	assert.Contains(t, out, "bool no = false;")
}

func TestEnumTables(t *testing.T) {
	out := generate(t, `
		enumerated COLOR { RED, GREEN, BLUE };
		Main() {
			COLOR c = COLOR.GREEN;
			string s = c.toString();
			return true;
		}
	`)
	assert.Contains(t, out, "typedef enum {\n\tCOLOR_RED = 0,\n\tCOLOR_GREEN = 1,\n\tCOLOR_BLUE = 2,\n} COLOR;")
	assert.Contains(t, out, `static const char* COLOR_names[] = {"RED", "GREEN", "BLUE"};`)
	assert.Contains(t, out, "String COLOR_to_string(COLOR v) {")
	assert.Contains(t, out, "COLOR c = COLOR_GREEN;")
	assert.Contains(t, out, "String s = COLOR_to_string(c);")
}

func TestSortCopiesItsInput(t *testing.T) {
	out := generate(t, `
		Main() {
			integer[] xs = [3, 1, 2];
			integer[] sorted = xs.sort();
			integer[] uniq = xs.unique();
			return true;
		}
	`)
	assert.Contains(t, out, "Array_integer sorted = Array_integer_sort(xs);")
	assert.Contains(t, out, "Array_integer_sort(Array_integer a) {\n\tArray_integer r = Array_integer_copy(a);")
	assert.Contains(t, out, "Array_integer_unique(Array_integer a) {\n\tArray_integer r = Array_integer_make(a.length);")
}

func TestLambdaLowering(t *testing.T) {
	out := generate(t, `
		Main() {
			integer[] xs = [1, 2, 3];
			integer[] doubled = xs.map((x) -> x * 2);
			integer total = xs.reduce((acc, x) -> acc + x, 0);
			return total == 9;
		}
	`)
	assert.Contains(t, out, "static int lambda_0(int x) {\n\treturn x * 2;\n}")
	assert.Contains(t, out, "static int lambda_1(int acc, int x) {\n\treturn acc + x;\n}")
	assert.Contains(t, out, "Array_integer_map(xs, lambda_0)")
	assert.Contains(t, out, "Array_integer_reduce_integer(xs, lambda_1, 0)")
	assert.Contains(t, out, "int Array_integer_reduce_integer(Array_integer a, int (*f)(int, int), int init) {")
}

func TestAppendAndIndexAssignTakeTheArrayAddress(t *testing.T) {
	out := generate(t, `
		Main() {
			integer[] xs = [1, 2];
			xs.append(3);
			xs[0] = 9;
			return xs[0] == 9;
		}
	`)
	assert.Contains(t, out, "Array_integer_append(&xs, 3);")
	assert.Contains(t, out, "Array_integer_set(&xs, 0, 9);")
}

func TestBuiltinSectionsAreOnDemand(t *testing.T) {
	bare := generate(t, `Main() { return true; }`)
	assert.NotContains(t, bare, "CONSOLE_scan")
	assert.NotContains(t, bare, "MATH_PI")
	assert.NotContains(t, bare, "RANDOM_integer")
	assert.NotContains(t, bare, "FILECLS_read")

	out := generate(t, `
		Main() {
			CONSOLE.Print("hi");
			float p = MATH.Power(2.0, 3.0);
			return true;
		}
	`)
	assert.Contains(t, out, "String CONSOLE_scan(void) {")
	assert.Contains(t, out, "static const float MATH_PI")
	assert.Contains(t, out, "float p = MATH_power(2.0f, 3.0f);")
}

func TestPrintDispatchesOnArgumentType(t *testing.T) {
	out := generate(t, `
		enumerated COLOR { RED, GREEN };
		Main() {
			CONSOLE.Print(5);
			CONSOLE.Print("x");
			CONSOLE.Print(true);
			CONSOLE.Print(2.5);
			CONSOLE.Print(COLOR.RED);
			return true;
		}
	`)
	assert.Contains(t, out, "CONSOLE_print_integer(5);")
	assert.Contains(t, out, `CONSOLE_print_string(String_new("x", 1));`)
	assert.Contains(t, out, "CONSOLE_print_boolean(true);")
	assert.Contains(t, out, "CONSOLE_print_float(2.5f);")
	assert.Contains(t, out, "CONSOLE_print_cstr(COLOR_names[COLOR_RED]);")
}

func TestStringLowering(t *testing.T) {
	out := generate(t, `
		Main() {
			string greeting = "hi" + "!";
			string upper = greeting.toUpper();
			boolean same = greeting == "hi!";
			return same;
		}
	`)
	assert.Contains(t, out, `String_concat(String_new("hi", 2), String_new("!", 1))`)
	assert.Contains(t, out, "String upper = String_to_upper(greeting);")
	assert.Contains(t, out, `String_equals(greeting, String_new("hi!", 3))`)
}

func TestEscapedStringBytes(t *testing.T) {
	out := generate(t, `
		Main() {
			string s = "a\tb";
			return true;
		}
	`)
	assert.Contains(t, out, `String_new("a\tb", 3)`)
}

func TestKeywordCollisionsGetSuffixed(t *testing.T) {
	out := generate(t, `
		Main() {
			integer register = 1;
			register++;
			return register == 1;
		}
	`)
	assert.Contains(t, out, "int register1 = 1;")
	assert.Contains(t, out, "register1++;")
	assert.NotContains(t, out, "int register =")
}

func TestLoops(t *testing.T) {
	out := generate(t, `
		Main() {
			integer n = 0;
			loop for (3) {
				n++;
			}
			loop until (n == 0) {
				n--;
			}
			return n == 0;
		}
	`)
	assert.Contains(t, out, "for (int _i0 = 0, _n0 = 3; _i0 < _n0; _i0++) {")
	assert.Contains(t, out, "while (!(n == 0)) {")
}

func TestBooleanOperatorLowering(t *testing.T) {
	out := generate(t, `
		Main() {
			integer x = 5;
			boolean a = x == 5;
			boolean b = x > 3;
			boolean both = a & b;
			boolean either = a V b;
			boolean exactly = a VV b;
			boolean same = not(not(x == 5));
			if (not(both)) {
				return false;
			}
			return same;
		}
	`)
	assert.Contains(t, out, "bool both = a && b;")
	assert.Contains(t, out, "bool either = a || b;")
	assert.Contains(t, out, "bool exactly = a != b;")
	assert.Contains(t, out, "bool same = !((!((x == 5))));")
	assert.Contains(t, out, "if (!(both)) {")
}

func TestPowerOperator(t *testing.T) {
	out := generate(t, `
		Main() {
			integer p = 2 ^ 10;
			float q = 2.0 ^ 3.0;
			return p == 1024;
		}
	`)
	assert.Contains(t, out, "int p = int_pow(2, 10);")
	assert.Contains(t, out, "float q = powf(2.0f, 3.0f);")
	assert.Contains(t, out, "int int_pow(int base, int exp) {")
}

func TestWideLiteralAdoption(t *testing.T) {
	out := generate(t, `
		Main() {
			longinteger big = 5;
			longfloat precise = 2.5;
			return true;
		}
	`)
	assert.Contains(t, out, "long long big = 5LL;")
	assert.Contains(t, out, "double precise = 2.5;")
}

func TestValueMethods(t *testing.T) {
	out := generate(t, `
		Main() {
			integer five = 5;
			string s = five.toString();
			string sub = "hello".substring(1, 3);
			integer n = "42".toInteger();
			return n == 42;
		}
	`)
	assert.Contains(t, out, "String s = int_to_string(five);")
	assert.Contains(t, out, `String sub = String_substring(String_new("hello", 5), 1, 3);`)
	assert.Contains(t, out, `int n = String_to_integer(String_new("42", 2));`)
}

func TestForwardDeclarationsPrecedeBodies(t *testing.T) {
	out := generate(t, `
		integer Twice(integer n) { return Double(n); }
		integer Double(integer n) { return n * 2; }
		Main() { return Twice(3) == 6; }
	`)
	assert.Contains(t, out, "int Twice(int n);")
	assert.Contains(t, out, "int Double(int n);")
	protos := strings.Index(out, "int Double(int n);")
	body := strings.Index(out, "int Double(int n) {")
	assert.Less(t, protos, body)
}

func TestFieldAccessThroughValues(t *testing.T) {
	out := generate(t, `
		class POINT {
			public float x;
			public float y;
			public Initialize(float px, float py) { x = px; y = py; }
		}
		Main() {
			POINT p = new POINT(1.0, 2.0);
			float total = p.x + p.y;
			p.x = 5.0;
			return true;
		}
	`)
	assert.Contains(t, out, "float total = (p)->x + (p)->y;")
	assert.Contains(t, out, "(p)->x = 5.0f;")
}

func TestStringArraysForJoin(t *testing.T) {
	out := generate(t, `
		Main() {
			string[] parts = ["a", "b"];
			string joined = STRING.Join(parts, ", ");
			return true;
		}
	`)
	assert.Contains(t, out, "String STRING_join(Array_string parts, String sep) {")
	assert.Contains(t, out, `String joined = STRING_join(parts, String_new(", ", 2));`)
}
