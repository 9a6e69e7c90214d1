package parser

// dumpScript is executed by the interpreter with -Command. It reads the
// candidate command text from stdin, parses it with the engine's own
// parser, and prints the tree in the wire schema decoded by the ast
// package. Passing the candidate on stdin avoids a second layer of
// argument quoting.
//
// Node kinds the validator does not reason about are emitted as "Other"
// with their immediate children preserved, so hidden subexpressions stay
// visible to the scanner.
const dumpScript = `
$ErrorActionPreference = 'Stop'

function Get-DirectChildren([System.Management.Automation.Language.Ast]$node) {
    $node.FindAll({ param($a) $a.Parent -eq $node }, $true)
}

function Convert-Node([System.Management.Automation.Language.Ast]$node) {
    if ($null -eq $node) { return $null }
    $out = [ordered]@{ text = $node.Extent.Text }
    switch ($node.GetType().Name) {
        'ScriptBlockAst' {
            $out.kind = 'ScriptRoot'
            $out.statements = @(Get-DirectChildren $node | ForEach-Object { Convert-Node $_ })
        }
        'NamedBlockAst' {
            $out.kind = 'NamedBlock'
            $out.statements = @($node.Statements | ForEach-Object { Convert-Node $_ })
        }
        'PipelineAst' {
            $out.kind = 'Pipeline'
            if ($node.Background) { $out.background = $true }
            $out.stages = @($node.PipelineElements | ForEach-Object { Convert-Node $_ })
        }
        'CommandAst' {
            $out.kind = 'Command'
            switch ($node.InvocationOperator) {
                'Dot'       { $out.invocation = 'dot' }
                'Ampersand' { $out.invocation = 'call' }
            }
            $out.elements = @($node.CommandElements | ForEach-Object { Convert-Node $_ })
            if ($node.Redirections.Count -gt 0) {
                $out.redirections = @($node.Redirections | ForEach-Object { Convert-Node $_ })
            }
        }
        'CommandExpressionAst' {
            $out.kind = 'CommandExpression'
            $out.expression = Convert-Node $node.Expression
            if ($node.Redirections.Count -gt 0) {
                $out.redirections = @($node.Redirections | ForEach-Object { Convert-Node $_ })
            }
        }
        'AssignmentStatementAst' { $out.kind = 'Assignment' }
        'SubExpressionAst'       { $out.kind = 'SubExpression' }
        'ScriptBlockExpressionAst' { $out.kind = 'ScriptBlockExpression' }
        'FileRedirectionAst' {
            $out.kind = 'FileRedirection'
            $out.target = $node.Location.Extent.Text
        }
        'ExpandableStringExpressionAst' {
            $out.kind = 'ExpandableString'
            $out.nested = @($node.NestedExpressions | ForEach-Object { Convert-Node $_ })
        }
        'CommandParameterAst' {
            $out.kind = 'CommandParameter'
            $out.name = $node.ParameterName
            if ($node.Argument) { $out.argument = Convert-Node $node.Argument }
        }
        'InvokeMemberExpressionAst' {
            $out.kind = 'InvokeMemberExpression'
            $out.member = $node.Member.Extent.Text
            $out.children = @(Get-DirectChildren $node | ForEach-Object { Convert-Node $_ })
        }
        'StringConstantExpressionAst' {
            $out.kind = 'StringConstant'
            $out.value = [string]$node.Value
        }
        'VariableExpressionAst' {
            $out.kind = 'VariableReference'
            $out.name = $node.VariablePath.UserPath
        }
        default {
            $out.kind = 'Other'
            $out.children = @(Get-DirectChildren $node | ForEach-Object { Convert-Node $_ })
        }
    }
    return $out
}

try {
    $text = [Console]::In.ReadToEnd()
    $tokens = $null
    $parseErrors = $null
    $root = [System.Management.Automation.Language.Parser]::ParseInput($text, [ref]$tokens, [ref]$parseErrors)
    $result = [ordered]@{
        ok     = $true
        errors = @($parseErrors | ForEach-Object { $_.Message })
        ast    = Convert-Node $root
    }
} catch {
    $result = [ordered]@{ ok = $false; diag = $_.Exception.Message }
}
$result | ConvertTo-Json -Depth 100 -Compress
`
